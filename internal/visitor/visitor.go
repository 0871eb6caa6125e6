// Package visitor derives the anonymous identity used for dedup and bans.
package visitor

import (
	"net"
	"net/netip"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Unknown is returned when no usable address is available.
const Unknown = "unknown"

// Identify returns the normalized network address of the requester.
// Trusted proxy handling is configured on the Fiber app; when a proxy header
// is in effect only its first entry is used.
func Identify(c *fiber.Ctx) string {
	return Normalize(c.IP())
}

// Normalize canonicalizes an address: ports are dropped, IPv4-mapped IPv6
// addresses are unmapped and IPv6 is lower-cased in compressed form.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, ','); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	if raw == "" {
		return Unknown
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		return addr.Unmap().WithZone("").String()
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		if addr, err := netip.ParseAddr(host); err == nil {
			return addr.Unmap().WithZone("").String()
		}
	}
	return Unknown
}
