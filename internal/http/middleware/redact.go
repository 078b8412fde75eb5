// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Redactor, which scrubs obvious PII from request
// metadata before it reaches the access log. Bodies are never logged.
package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only so UUID hex segments never match.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// Redactor masks sensitive headers and identifier-like substrings.
// A nil *Redactor passes values through unchanged.
type Redactor struct {
	maskHeaders map[string]struct{}
}

// NewRedactor returns a Redactor that fully masks Authorization, Cookie,
// Set-Cookie, and any extra header names given (case-insensitive).
func NewRedactor(extraHeaders ...string) *Redactor {
	m := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range extraHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m[h] = struct{}{}
		}
	}
	return &Redactor{maskHeaders: m}
}

// String replaces UUIDs, e-mail addresses and phone numbers in s.
// UUIDs go first so the looser phone pattern cannot eat their digits.
func (r *Redactor) String(s string) string {
	if r == nil || s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// Headers flattens h into a loggable map with masked and scrubbed values.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		val := strings.Join(vv, ", ")
		if r != nil {
			if _, ok := r.maskHeaders[strings.ToLower(k)]; ok {
				out[k] = "[REDACTED]"
				continue
			}
		}
		out[k] = r.String(val)
	}
	return out
}
