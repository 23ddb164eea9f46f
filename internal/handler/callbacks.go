package handler

import (
	"strings"
	"unicode"
)

// cleanCallbackData removes all non-printable characters from callback data,
// including the \f prefix telebot puts in front of unique buttons
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}
