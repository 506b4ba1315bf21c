package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMarkdown_DropsBlockedLines(t *testing.T) {
	in := strings.Join([]string{
		"# Title",
		`\write18{rm -rf /}`,
		"plain paragraph",
		`see \INPUT{/etc/passwd} here`,
		`\include{chapter}`,
		`\openout\foo=bar`,
		`\read16 to \x`,
		`\catcode` + "`" + `\^^M=13`,
		"- list item",
	}, "\n")

	got := SanitizeMarkdown(in)
	assert.Equal(t, "# Title\nplain paragraph\n- list item", got)
}

func TestSanitizeMarkdown_PreservesCleanInput(t *testing.T) {
	in := "a\n\nb\n  indented"
	assert.Equal(t, in, SanitizeMarkdown(in))
}

func TestSanitizeMarkdown_SubstringMatchAnywhere(t *testing.T) {
	// \readme contains \read and is dropped as well
	got := SanitizeMarkdown("keep\ntext \\readme text\nkeep too")
	assert.Equal(t, "keep\nkeep too", got)
}

func TestSanitizeMarkdown_LineEndings(t *testing.T) {
	assert.Equal(t, "a\nb\nc", SanitizeMarkdown("a\r\nb\rc\n"))
	assert.Equal(t, "a", SanitizeMarkdown("a\n\\write18{x}\n"))
	assert.Equal(t, "", SanitizeMarkdown(""))
}

func TestSanitizeMarkdown_OnlyBlocked(t *testing.T) {
	out, dropped := SanitizeMarkdownCount(`\write18{rm -rf /}`)
	assert.Equal(t, "", out)
	assert.Equal(t, 1, dropped)
}

func TestSanitizeMarkdown_EveryBlockedLineRemovedOthersKeptInOrder(t *testing.T) {
	var lines []string
	var want []string
	for i, tok := range BlockedTokens() {
		lines = append(lines, "before "+tok+" after")
		clean := "clean line " + string(rune('a'+i))
		lines = append(lines, clean)
		want = append(want, clean)
	}
	assert.Equal(t, strings.Join(want, "\n"), SanitizeMarkdown(strings.Join(lines, "\n")))
}

func TestBlockedTokens_ReturnsCopy(t *testing.T) {
	toks := BlockedTokens()
	toks[0] = "mutated"
	assert.Equal(t, `\write18`, BlockedTokens()[0])
}
