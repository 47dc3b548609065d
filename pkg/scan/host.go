package scan

import (
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// HostOf extracts the lower-cased host from a URL. Input without a scheme is
// treated as http. Returns "" when no host can be found.
func HostOf(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// RegisteredDomain returns the registrable domain (eTLD+1) for a URL, e.g.
// "login.example.co.uk" -> "example.co.uk". IP literals and hosts without a
// public suffix are returned unchanged.
func RegisteredDomain(rawURL string) string {
	host := HostOf(rawURL)
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// ASCIIHost returns the punycode form of an internationalized host name.
// Hosts that are already ASCII, or that fail IDNA validation, are returned
// unchanged.
func ASCIIHost(host string) string {
	if host == "" || isASCII(host) {
		return host
	}
	out, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return out
}

// ASCIIURL rewrites the host of rawURL in punycode so that lookalike
// characters stay visible where Unicode cannot be shown, e.g.
// "https://аpple.com/login" -> "https://xn--pple-43d.com/login".
func ASCIIURL(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" || isASCII(s) {
		return rawURL
	}
	bare := !strings.Contains(s, "://")
	if bare {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return rawURL
	}
	host := u.Hostname()
	if isASCII(host) {
		return rawURL
	}
	ascii := ASCIIHost(host)
	if ascii == host {
		return rawURL
	}
	if port := u.Port(); port != "" {
		ascii = net.JoinHostPort(ascii, port)
	}
	u.Host = ascii
	out := u.String()
	if bare {
		out = strings.TrimPrefix(out, "http://")
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
