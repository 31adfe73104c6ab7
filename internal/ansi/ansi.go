// Package ansi removes terminal control sequences from captured process output.
package ansi

import "regexp"

// escapeSeq matches, in order of preference:
//   - a terminated OSC string (ESC ] ... BEL or ESC ] ... ESC \)
//   - a terminated DCS, SOS, PM or APC string (ESC P/X/^/_ ... ESC \)
//   - a two-byte escape (ESC followed by a byte in @-Z, \, ], ^ or _)
//   - a CSI sequence (ESC [ params intermediates final)
//
// An introducer without a terminator only loses its two bytes, so output
// cut off mid-sequence keeps the text that follows.
var escapeSeq = regexp.MustCompile(
	`\x1b(?:\][^\x07\x1b]*(?:\x07|\x1b\\)|[PX^_][^\x1b]*\x1b\\|[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`,
)

// Strip returns text with ANSI/VT100 escape sequences removed. Every other
// byte is kept, including invalid UTF-8.
func Strip(text string) string {
	if text == "" {
		return text
	}
	return escapeSeq.ReplaceAllString(text, "")
}
