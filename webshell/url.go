// Package webshell is a command-line client for URL-templated web
// shells: each command is percent-encoded into a GET request and the
// response body is printed verbatim.
package webshell

import (
	"fmt"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// Target is the server and URL template commands are sent to.
type Target struct {
	Host   string
	Port   int
	Prefix string
	Suffix string
}

// URL returns the request URL for command.
func (t Target) URL(command string) string {
	return BuildURL(t.Host, t.Port, t.Prefix, t.Suffix, command)
}

// BuildURL returns http://host:port/<prefix><quoted command><suffix>.
// Prefix and suffix are inserted as-is.
func BuildURL(host string, port int, prefix, suffix, command string) string {
	return fmt.Sprintf("http://%s:%d/%s%s%s", host, port, prefix, Quote(command), suffix)
}

// Quote percent-encodes every byte of s except ASCII letters, digits,
// "_.-~" and "/".  Hex digits are upper case.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldKeep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '_', '.', '-', '~', '/':
		return true
	}
	return false
}
