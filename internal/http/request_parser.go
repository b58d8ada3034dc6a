// This file implements parsing helpers for request data. HTMX submits
// either urlencoded forms or hx-vals JSON; both flow through the same
// parser so handlers read fields uniformly.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// RequestBodyParser reads a request body once and answers field
// lookups for both JSON and form encodings.
type RequestBodyParser struct {
	raw      []byte
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser drains the request body. Parsing happens on
// the first Parse call.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.raw, p.err = io.ReadAll(r.Body)
	return p
}

// Parse decodes the stored body. A body starting with '{' or '[' is
// treated as JSON, anything else as urlencoded form data. Calling
// Parse again returns the first result.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	switch {
	case len(p.raw) == 0:
		p.formData = url.Values{}
	case p.raw[0] == '{' || p.raw[0] == '[':
		p.jsonData = map[string]interface{}{}
		p.err = json.Unmarshal(p.raw, &p.jsonData)
	default:
		p.formData, p.err = url.ParseQuery(string(p.raw))
	}
	return p.err
}

// lookup finds the raw value for key in whichever encoding parsed.
func (p *RequestBodyParser) lookup(key string) (string, bool) {
	if p.jsonData != nil {
		v, ok := p.jsonData[key]
		if !ok {
			return "", false
		}
		return stringValue(v), true
	}
	if p.formData == nil {
		return "", false
	}
	vs, ok := p.formData[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Get returns the sanitized value for key, or "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	v, _ := p.lookup(key)
	return strings.TrimSpace(sanitizeInput(v))
}

// Has reports whether the parsed data carries the key at all, letting
// patch endpoints distinguish "leave untouched" from "set to empty".
func (p *RequestBodyParser) Has(key string) bool {
	_, ok := p.lookup(key)
	return ok
}

// GetAll returns every value submitted under key (multi-selects).
func (p *RequestBodyParser) GetAll(key string) []string {
	if p.formData != nil {
		var out []string
		for _, v := range p.formData[key] {
			v = strings.TrimSpace(sanitizeInput(v))
			if v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	if v := p.Get(key); v != "" {
		return []string{v}
	}
	return nil
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue renders a decoded JSON value as the string a form would
// have sent. Unsupported shapes (arrays, objects, null) come back
// empty.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod returns a 405 builder unless the request method is
// one of methods. A nil return means the method is acceptable.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET is a convenience function for GET-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet)
}
