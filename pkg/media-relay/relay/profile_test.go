//go:build unit

package relay

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_headerProfile_Render(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		url       string
		check     func(t *testing.T, h http.Header)
		wantErr   bool
	}{
		{
			name: "default profile",
			url:  "https://i.imgur.com/a.png",
			check: func(t *testing.T, h http.Header) {
				assert.Len(t, h, len(DefaultBrowserHeaders))
				assert.Equal(t, DefaultBrowserHeaders["User-Agent"], h.Get("User-Agent"))
				assert.Equal(t, DefaultBrowserHeaders["Accept"], h.Get("Accept"))
				assert.Equal(t, "https://i.imgur.com/a.png", h.Get("Referer"))
			},
		},
		{
			name: "overrides with template functions",
			overrides: map[string]string{
				"referer":  "{{ urlOrigin .URL }}/",
				"x-origin": "{{ urlHost .URL | upper }}",
			},
			url: "https://files.catbox.moe/a.png",
			check: func(t *testing.T, h http.Header) {
				assert.Equal(t, "https://files.catbox.moe/", h.Get("Referer"))
				assert.Equal(t, "FILES.CATBOX.MOE", h.Get("X-Origin"))
			},
		},
		{
			name:      "empty value removes header",
			overrides: map[string]string{"Sec-Fetch-Site": ""},
			url:       "https://imgur.com/a.png",
			check: func(t *testing.T, h http.Header) {
				_, ok := h["Sec-Fetch-Site"]
				assert.False(t, ok)
			},
		},
		{
			name:      "new lines are stripped",
			overrides: map[string]string{"X-Test": "a\r\nb"},
			url:       "https://imgur.com/a.png",
			check: func(t *testing.T, h http.Header) {
				assert.Equal(t, "a b", h.Get("X-Test"))
			},
		},
		{
			name:      "invalid template",
			overrides: map[string]string{"X-Test": "{{ .URL "},
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newHeaderProfile(tt.overrides)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)

			got, err := p.Render(tt.url)
			require.NoError(t, err)

			tt.check(t, got)
		})
	}
}
