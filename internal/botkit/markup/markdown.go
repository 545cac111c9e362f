// Package markup - хелперы для сообщений телеграма в режиме MarkdownV2.
package markup

import "strings"

// Символы, которые в MarkdownV2 нужно экранировать в обычном тексте
const specialChars = "\\_*[]()~`>#+-=|{}.!"

var (
	textEscaper = newEscaper(specialChars)
	// Внутри (...) ссылки экранируются только ) и \
	urlEscaper = newEscaper("\\)")
)

func newEscaper(chars string) *strings.Replacer {
	pairs := make([]string, 0, 2*len(chars))
	for _, c := range chars {
		pairs = append(pairs, string(c), "\\"+string(c))
	}

	return strings.NewReplacer(pairs...)
}

// Экранирует спецсимволы MarkdownV2 для телеграма
func EscapeForMarkdown(src string) string {
	return textEscaper.Replace(src)
}

func Bold(text string) string {
	return "*" + EscapeForMarkdown(text) + "*"
}

// Ссылка с подписью: [text](url)
func Link(text, url string) string {
	return "[" + EscapeForMarkdown(text) + "](" + urlEscaper.Replace(url) + ")"
}
