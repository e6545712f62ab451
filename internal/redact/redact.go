// Package redact scrubs credential material from text that is about to be
// logged or shown to the operator. The az CLI echoes request details on
// failure, and those details can include the bearer token that must never
// reach the log file.
package redact

import (
	"math"
	"regexp"
	"strings"
)

// mask replaces matched credential material.
const mask = "[REDACTED]"

var (
	// JWT-shaped tokens: three dot-separated base64url segments starting
	// with the {"typ"/"alg"} header prefix.
	jwtRe = regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]+`)

	// Authorization header values.
	bearerRe = regexp.MustCompile(`(?i)\b(bearer\s+)[A-Za-z0-9._~+/=-]+`)

	// Token-bearing JSON fields as emitted by "az account get-access-token".
	jsonFieldRe = regexp.MustCompile(`(?i)("(?:access_?token|refresh_?token|password|secret)"\s*:\s*")[^"]*(")`)
)

// Secrets masks credential material in s. Safe to call on text that carries
// none; the input passes through unchanged.
func Secrets(s string) string {
	s = jsonFieldRe.ReplaceAllString(s, "${1}"+mask+"${2}")
	s = bearerRe.ReplaceAllString(s, "${1}"+mask)
	s = jwtRe.ReplaceAllString(s, mask)
	return s
}

// placeholderWords flag values that are obviously not real credentials.
var placeholderWords = []string{"replace", "changeme", "password", "topsecret", "your-token", "example"}

// Placeholder reports whether a configured token value looks like leftover
// template text rather than real credential material. Real tokens are long
// and high-entropy; a short or repetitive value means the operator forgot to
// set the variable.
func Placeholder(token string) bool {
	lower := strings.ToLower(token)
	for _, word := range placeholderWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	if len(token) < 32 {
		return true
	}
	return entropy(token) < 2.5
}

// entropy computes the Shannon entropy of s in bits per character.
func entropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	freq := make(map[rune]int)
	for _, c := range s {
		freq[c]++
	}

	var h float64
	length := float64(len(s))
	for _, count := range freq {
		p := float64(count) / length
		h -= p * math.Log2(p)
	}
	return h
}
