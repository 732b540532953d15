package api

import (
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// Locations checked, in order, for a human-readable message in an error body.
var messagePaths = []string{
	"error.message",
	"message",
	"error",
	"detail",
	"errors.0.message",
}

const maxPlainMessage = 200

// errorMessage extracts the message of an error response. Empty when nothing usable is found.
func errorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if gjson.ValidBytes(body) {
		for _, p := range messagePaths {
			r := gjson.GetBytes(body, p)
			if r.Type == gjson.String && strings.TrimSpace(r.Str) != "" {
				return strings.TrimSpace(r.Str)
			}
		}
		return ""
	}
	text := strings.TrimSpace(string(body))
	if text == "" || len(text) > maxPlainMessage || strings.HasPrefix(text, "<") {
		return ""
	}
	for _, r := range text {
		if !unicode.IsPrint(r) {
			return ""
		}
	}
	return text
}
