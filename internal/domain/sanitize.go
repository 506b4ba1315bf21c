package domain

import "strings"

// blockedTokens are TeX directives that let a document reach the shell or
// the filesystem when rendered through a LaTeX engine.
var blockedTokens = []string{
	`\write18`,
	`\input`,
	`\include`,
	`\openout`,
	`\read`,
	`\catcode`,
}

// BlockedTokens returns a copy of the denylist.
func BlockedTokens() []string {
	return append([]string(nil), blockedTokens...)
}

// SanitizeMarkdown drops every line that contains a blocked token, compared
// case-insensitively anywhere in the line. The remaining lines are joined
// with "\n" in their original order.
func SanitizeMarkdown(markdown string) string {
	out, _ := sanitizeLines(markdown)
	return out
}

// SanitizeMarkdownCount is SanitizeMarkdown that also reports how many lines were dropped.
func SanitizeMarkdownCount(markdown string) (string, int) {
	return sanitizeLines(markdown)
}

func sanitizeLines(markdown string) (string, int) {
	lines := splitLines(markdown)
	kept := make([]string, 0, len(lines))
	dropped := 0
	for _, line := range lines {
		if containsBlockedToken(line) {
			dropped++
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), dropped
}

func containsBlockedToken(line string) bool {
	lower := strings.ToLower(line)
	for _, token := range blockedTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// splitLines splits on \n, \r\n and \r. A trailing line break does not
// yield a trailing empty line.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			lines = append(lines, s[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, s[start:i])
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
