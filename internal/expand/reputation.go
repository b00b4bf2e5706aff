package expand

import (
	"net/url"
	"strings"
)

// Domain reputation buckets. This gate is stricter than the general
// quality scorer: it looks at the domain only, never page content, and
// anything below MinReputation is dropped from expansion output.
const (
	MinReputation       = 0.3
	eduReputation       = 0.9
	orgReputation       = 0.75
	commonReputation    = 0.5
	unknownReputation   = 0.3
	throwawayReputation = 0.2
	invalidReputation   = 0.1
)

// trustedDomainScores are known high-trust hosts: professional societies
// and long-lived community sites.
var trustedDomainScores = map[string]float64{
	"ieee.org":            0.95,
	"acm.org":             0.95,
	"usenix.org":          0.95,
	"w3.org":              0.9,
	"python.org":          0.9,
	"linuxfoundation.org": 0.9,
	"oreilly.com":         0.9,
}

// throwawayTLDs are cheap TLDs heavily used for spam and link farms.
var throwawayTLDs = []string{".xyz", ".top", ".click", ".loan", ".win", ".gq", ".tk"}

// DomainReputation scores a URL's domain in [0,1] independent of page
// content. Any parse failure yields the conservative minimum.
func DomainReputation(rawURL string) float64 {
	parsed, err := url.Parse(strings.ToLower(strings.TrimSpace(rawURL)))
	if err != nil || parsed.Host == "" {
		return invalidReputation
	}
	host := parsed.Host

	for domain, score := range trustedDomainScores {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return score
		}
	}

	if strings.HasSuffix(host, ".edu") {
		return eduReputation
	}

	for _, tld := range throwawayTLDs {
		if strings.HasSuffix(host, tld) {
			return throwawayReputation
		}
	}

	if strings.HasSuffix(host, ".org") {
		return orgReputation
	}

	for _, tld := range []string{".com", ".net", ".io"} {
		if strings.HasSuffix(host, tld) {
			return commonReputation
		}
	}

	return unknownReputation
}
