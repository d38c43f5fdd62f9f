package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient identifies callers whose address could not be determined.
const UnknownClient = "unknown"

// Unknown-client policies.
const (
	// PolicyShared puts all unknown callers in a single bucket.
	PolicyShared = "shared"
	// PolicyBypass lets unknown callers through without counting them.
	PolicyBypass = "bypass"
)

// DefaultClientIPHeaders are consulted in order by ClientIP.
var DefaultClientIPHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For"}

// ClientIP extracts the caller identity from trusted proxy headers.
//
// Comma-separated headers (X-Forwarded-For) contribute their first entry.
// When no header yields a value, UnknownClient is returned.
func ClientIP(r *http.Request, headers []string) string {
	if r == nil {
		return UnknownClient
	}
	if len(headers) == 0 {
		headers = DefaultClientIPHeaders
	}

	for _, header := range headers {
		value := strings.TrimSpace(r.Header.Get(header))
		if value == "" {
			continue
		}
		if first, _, found := strings.Cut(value, ","); found {
			value = strings.TrimSpace(first)
		}
		if value != "" {
			return value
		}
	}
	return UnknownClient
}

// ClientIdentifier resolves the rate-limit identity of a request.
type ClientIdentifier func(*http.Request) string

// NewClientIdentifier returns a ClientIdentifier over headers. With
// useRemoteAddr set, requests carrying none of the headers are identified by
// the connection address instead of UnknownClient.
func NewClientIdentifier(headers []string, useRemoteAddr bool) ClientIdentifier {
	headers = append([]string(nil), headers...)
	return func(r *http.Request) string {
		id := ClientIP(r, headers)
		if id != UnknownClient || !useRemoteAddr || r == nil {
			return id
		}
		if host := remoteHost(r.RemoteAddr); host != "" {
			return host
		}
		return UnknownClient
	}
}

func remoteHost(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
