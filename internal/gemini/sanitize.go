package gemini

import "strings"

// MaxDescriptionLength is the maximum allowed length for expense descriptions.
const MaxDescriptionLength = 200

// SanitizeForPrompt sanitizes user input to prevent prompt injection
// attacks. It removes or escapes characters that could break prompt
// structure, and truncates to the given maxLength.
func SanitizeForPrompt(input string, maxLength int) string {
	// Remove or escape quotes that could break prompt structure.
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")

	// Remove null bytes and other control characters.
	input = strings.ReplaceAll(input, "\x00", "")

	// Normalize whitespace: splits on any whitespace (spaces, tabs,
	// newlines) and rejoins with single spaces. This handles newline
	// injection and collapses multiple spaces in one pass.
	input = strings.Join(strings.Fields(input), " ")

	// Limit length to prevent prompt stuffing attacks. Trim after
	// truncation to avoid trailing whitespace from mid-word cuts.
	if len(input) > maxLength {
		input = strings.TrimSpace(input[:maxLength])
	}

	return input
}
