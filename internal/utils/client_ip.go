package utils

import "strings"

// ClientIP derives the requester's network address with a fixed precedence:
// client-declared proxy headers before the raw peer address. Declared
// headers are spoofable; the ordering is a deliberate trade-off so the bot
// is recognized behind the reverse proxies most sites run.
func ClientIP(forwardedFor, realIP, peer string) string {
	if forwardedFor != "" {
		first := forwardedFor
		if idx := strings.Index(forwardedFor, ","); idx >= 0 {
			first = forwardedFor[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(realIP); ip != "" {
		return ip
	}

	return strings.TrimSpace(peer)
}
