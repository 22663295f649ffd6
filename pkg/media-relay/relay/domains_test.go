//go:build unit

package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_domainMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		entries  []string
		hostname string
		want     bool
	}{
		{name: "exact", entries: DefaultBrowserHeaderDomains, hostname: "catbox.moe", want: true},
		{name: "sub domain", entries: DefaultBrowserHeaderDomains, hostname: "cdn.i.imgur.com", want: true},
		{name: "uppercase", entries: DefaultBrowserHeaderDomains, hostname: "FILES.CATBOX.MOE", want: true},
		{name: "trailing dot", entries: DefaultBrowserHeaderDomains, hostname: "imgur.com.", want: true},
		{name: "lookalike", entries: DefaultBrowserHeaderDomains, hostname: "notimgur.com", want: false},
		{name: "suffix without dot", entries: DefaultBrowserHeaderDomains, hostname: "imgur.com.evil.net", want: false},
		{name: "empty host", entries: DefaultBrowserHeaderDomains, hostname: "", want: false},
		{name: "leading dot entry", entries: []string{".example.com"}, hostname: "a.example.com", want: true},
		{name: "glob", entries: []string{"cdn-*.example.com"}, hostname: "cdn-eu.example.com", want: true},
		{name: "glob stays in label", entries: []string{"*.example.com"}, hostname: "a.b.example.com", want: false},
		{name: "super glob", entries: []string{"**.example.com"}, hostname: "a.b.example.com", want: true},
		{name: "no entries", entries: nil, hostname: "example.com", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := newDomainMatcher(tt.entries)
			require.NoError(t, err)

			assert.Equal(t, tt.want, m.Match(tt.hostname))
		})
	}
}

func Test_newDomainMatcher(t *testing.T) {
	m, err := newDomainMatcher([]string{" A.com ", ""}, nil, []string{"b.*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com"}, m.domains)
	assert.Len(t, m.globs, 1)
	assert.False(t, m.Empty())

	m, err = newDomainMatcher()
	require.NoError(t, err)
	assert.True(t, m.Empty())

	_, err = newDomainMatcher([]string{"[a-"})
	assert.Error(t, err)
}
