// Package security holds helpers that keep credentials out of logs.
package security

import (
	"net/http"
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

var sensitiveHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	"X-API-Key",
	"X-CSRF-Token",
}

// sensitiveParams are query keys that may carry a bearer token, e.g. the
// websocket endpoint which accepts ?token=.
var sensitiveParams = []string{"token", "access_token", "api_key"}

// RedactHeaders returns a copy of headers with credential values masked.
func RedactHeaders(headers http.Header) http.Header {
	out := headers.Clone()
	for _, h := range sensitiveHeaders {
		if out.Get(h) != "" {
			out.Set(h, redacted)
		}
	}
	return out
}

// RedactURI masks credential query parameters of a request URI. Malformed
// URIs are returned without their query.
func RedactURI(uri string) string {
	path, rawQuery, found := strings.Cut(uri, "?")
	if !found {
		return uri
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return path
	}
	changed := false
	for _, key := range sensitiveParams {
		if _, ok := q[key]; ok {
			q.Set(key, redacted)
			changed = true
		}
	}
	if !changed {
		return uri
	}
	return path + "?" + q.Encode()
}
