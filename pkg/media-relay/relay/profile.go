package relay

import (
	"net/http"
	"sort"
	"strings"
	"text/template"

	"github.com/oxyno-zeta/media-relay/pkg/media-relay/utils/templateutils"
)

// DefaultBrowserHeaders is the browser-like header profile sent to upstreams
// needing it. Values are templates receiving the target url as .URL.
var DefaultBrowserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "{{ .URL }}",
	"Sec-Fetch-Dest":  "image",
	"Sec-Fetch-Mode":  "no-cors",
	"Sec-Fetch-Site":  "cross-site",
}

type headerProfileData struct {
	URL string
}

type headerTemplate struct {
	tpl  *template.Template
	name string
}

// headerProfile renders the browser header set for a target url.
type headerProfile struct {
	headers []*headerTemplate
}

func newHeaderProfile(overrides map[string]string) (*headerProfile, error) {
	// Merge default values and overrides with canonical keys
	values := map[string]string{}
	for k, v := range DefaultBrowserHeaders {
		values[http.CanonicalHeaderKey(k)] = v
	}

	for k, v := range overrides {
		values[http.CanonicalHeaderKey(strings.TrimSpace(k))] = v
	}

	// Sort keys for a stable rendering order
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	res := &headerProfile{}

	for _, k := range keys {
		tpl, err := templateutils.ParseTemplate(k, values[k])
		// Check error
		if err != nil {
			return nil, err
		}

		res.headers = append(res.headers, &headerTemplate{name: k, tpl: tpl})
	}

	return res, nil
}

// Render executes all header templates for the target url.
// Headers rendered as empty strings are skipped.
func (p *headerProfile) Render(targetURL string) (http.Header, error) {
	res := http.Header{}
	data := &headerProfileData{URL: targetURL}

	for _, h := range p.headers {
		buf, err := templateutils.Execute(h.tpl, data)
		// Check error
		if err != nil {
			return nil, err
		}

		// Header values can't contain new lines
		v := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(buf.String(), "\r", ""), "\n", " "))
		if v == "" {
			continue
		}

		res.Set(h.name, v)
	}

	return res, nil
}
