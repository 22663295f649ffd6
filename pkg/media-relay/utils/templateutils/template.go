package templateutils

import (
	"bytes"
	"net/url"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// ParseTemplate parses a template string with sprig and media relay functions loaded.
func ParseTemplate(name, tplString string) (*template.Template, error) {
	// Load template from string
	tmpl, err := template.
		New(name).
		Funcs(sprig.TxtFuncMap()).
		Funcs(mediaRelayFuncMap()).
		Parse(tplString)
	// Check if error exists
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return tmpl, nil
}

// ExecuteTemplate parses and executes a template string.
func ExecuteTemplate(tplString string, data interface{}) (*bytes.Buffer, error) {
	// Load template from string
	tmpl, err := ParseTemplate("template-string-loaded", tplString)
	// Check if error exists
	if err != nil {
		return nil, err
	}

	return Execute(tmpl, data)
}

// Execute runs an already parsed template.
func Execute(tmpl *template.Template, data interface{}) (*bytes.Buffer, error) {
	// Generate template in buffer
	buf := &bytes.Buffer{}
	err := tmpl.Execute(buf, data)
	// Check if error exists
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return buf, nil
}

func mediaRelayFuncMap() template.FuncMap {
	// Result
	funcMap := map[string]interface{}{}
	// Add human size function
	funcMap["humanSize"] = func(fmt int64) string {
		return humanize.Bytes(uint64(fmt))
	}
	// Add url host function
	funcMap["urlHost"] = func(rawURL string) string {
		u, err := url.Parse(rawURL)
		if err != nil {
			return ""
		}

		return u.Hostname()
	}
	// Add url origin function
	funcMap["urlOrigin"] = func(rawURL string) string {
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			return ""
		}

		return u.Scheme + "://" + u.Host
	}

	// Return result
	return template.FuncMap(funcMap)
}
