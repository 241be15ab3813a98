package policy

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"streamwarden/internal/session"
)

// IPAllowlist restricts sessions to known source addresses. Entries may be
// exact IPs ("192.168.1.5"), CIDR blocks ("10.10.0.0/16"), or bare string
// prefixes ("10.10."). Sessions without a reported address are skipped; an
// absent address is not evidence of a violation.
type IPAllowlist struct {
	Entries []string
}

func (r IPAllowlist) Name() string { return "ip-allowlist" }

func (r IPAllowlist) Evaluate(_ context.Context, _ Env, sessions []session.Session) ([]Violation, error) {
	var violations []Violation
	for _, s := range sessions {
		if strings.TrimSpace(s.IPAddress) == "" {
			continue
		}
		if r.allowed(s.IPAddress) {
			continue
		}
		reason := fmt.Sprintf("streaming from unauthorized address %s", s.IPAddress)
		violations = append(violations, violation(s, r, reason, ActionTerminate))
	}
	return violations, nil
}

func (r IPAllowlist) allowed(ip string) bool {
	addr, addrErr := netip.ParseAddr(ip)
	for _, entry := range r.Entries {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil || addrErr != nil {
				continue
			}
			if prefix.Contains(addr) {
				return true
			}
			continue
		}
		if entry == ip {
			return true
		}
		if strings.HasSuffix(entry, ".") && strings.HasPrefix(ip, entry) {
			return true
		}
	}
	return false
}
