package relay

import (
	"strings"

	"emperror.dev/errors"
	"github.com/gobwas/glob"
)

// DefaultBrowserHeaderDomains lists hosts known to refuse non browser fetches.
var DefaultBrowserHeaderDomains = []string{
	"files.catbox.moe",
	"catbox.moe",
	"i.imgur.com",
	"imgur.com",
}

const globMetaCharacters = "*?[{"

// domainMatcher matches hostnames against a list of domains.
// Plain entries match exactly or as a dotted suffix, entries with glob meta
// characters are compiled with '.' as separator.
type domainMatcher struct {
	domains []string
	globs   []glob.Glob
}

func newDomainMatcher(entries ...[]string) (*domainMatcher, error) {
	res := &domainMatcher{}

	for _, list := range entries {
		for _, it := range list {
			entry := strings.ToLower(strings.TrimSpace(it))
			// Ignore empty values
			if entry == "" {
				continue
			}

			// Check if it is a pattern
			if strings.ContainsAny(entry, globMetaCharacters) {
				g, err := glob.Compile(entry, '.')
				// Check error
				if err != nil {
					return nil, errors.WithStack(err)
				}

				res.globs = append(res.globs, g)

				continue
			}

			res.domains = append(res.domains, strings.TrimPrefix(entry, "."))
		}
	}

	return res, nil
}

// Match returns true if the hostname is covered by one entry.
func (m *domainMatcher) Match(hostname string) bool {
	host := strings.TrimSuffix(strings.ToLower(hostname), ".")
	// Ignore empty host
	if host == "" {
		return false
	}

	for _, d := range m.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}

	for _, g := range m.globs {
		if g.Match(host) {
			return true
		}
	}

	return false
}

// Empty returns true when no entry is declared.
func (m *domainMatcher) Empty() bool {
	return len(m.domains) == 0 && len(m.globs) == 0
}
