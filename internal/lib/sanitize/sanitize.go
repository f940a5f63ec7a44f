// Package sanitize вычищает из ответа модели служебную разметку и инструкции.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	blockPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)\[SYSTEM\].*?\[/SYSTEM\]`),
		regexp.MustCompile(`(?is)<system>.*?</system>`),
	}
	linePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^### Instruction:.*$`),
		regexp.MustCompile(`(?m)^###.*$`),
		regexp.MustCompile(`(?im)^Instructions:.*$`),
		regexp.MustCompile(`(?im)^System:.*$`),
		regexp.MustCompile(`(?im)^As an AI assistant.*$`),
		regexp.MustCompile(`(?im)^I'll respond as .*$`),
	}
	extraBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Message удаляет служебные блоки и строки, обрезает пробелы по краям
// и схлопывает три и более переводов строки в два.
// Результат может быть пустой строкой.
func Message(content string) string {
	out := content
	for _, re := range blockPatterns {
		out = re.ReplaceAllString(out, "")
	}
	for _, re := range linePatterns {
		out = re.ReplaceAllString(out, "")
	}
	out = strings.TrimSpace(out)
	return extraBlankLines.ReplaceAllString(out, "\n\n")
}
