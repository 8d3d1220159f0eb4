package validators

import (
	"net"
	"strings"
)

// IsEmailDomainValid checks that the domain of a registration email resolves
// to a mail host, or at least to an address. Clients book with this address,
// so an undeliverable domain is rejected up front rather than discovered when
// the first confirmation bounces.
func IsEmailDomainValid(email string) bool {
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return false
	}

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	// Some small domains receive mail on their A/AAAA record directly.
	ips, err := net.LookupIP(domain)
	return err == nil && len(ips) > 0
}
