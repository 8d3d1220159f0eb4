package validators

import "testing"

// Only the malformed-address branches are covered here; the resolving
// branches depend on live DNS.
func TestIsEmailDomainValidRejectsMalformed(t *testing.T) {
	for _, email := range []string{
		"",
		"no-at-sign",
		"trailing@",
		"two@at@signs.example.com",
	} {
		if IsEmailDomainValid(email) {
			t.Errorf("%q should be rejected", email)
		}
	}
}
