// Package privacy reduces personal data before it reaches logs.
package privacy

import (
	"fmt"
	"net"
	"strings"

	id "unitgate/pkg/domain"
)

// AnonymizeIP truncates an address to its network: /24 for IPv4, /48 for
// IPv6. Returns "unknown" for empty input and "invalid" when unparseable.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// MaskPhone normalizes a phone number and keeps only the operator prefix
// and the last two digits, e.g. "0912 345 6789" -> "0912*****89".
// Short or empty numbers are masked entirely.
func MaskPhone(phone string) string {
	n := id.NormalizePhone(phone)
	if n == "" {
		return ""
	}
	const keepHead, keepTail = 4, 2
	if len(n) <= keepHead+keepTail {
		return strings.Repeat("*", len(n))
	}
	return n[:keepHead] + strings.Repeat("*", len(n)-keepHead-keepTail) + n[len(n)-keepTail:]
}
