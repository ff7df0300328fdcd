package lang

import (
	"net/url"
	"strings"
)

// RootPath returns the site root of u: scheme, host and the first path
// segment, with a trailing slash. A URL whose path has a single segment or
// none yields "scheme://host/".
func RootPath(u *url.URL) string {
	p := strings.TrimPrefix(u.Path, "/")
	web, _, found := strings.Cut(p, "/")
	if !found || web == "" {
		return u.Scheme + "://" + u.Host + "/"
	}
	return u.Scheme + "://" + u.Host + "/" + web + "/"
}

// rawQuery extracts the query part of raw, which may be a full URL or a bare
// query string with or without the leading '?'.
func rawQuery(raw string) string {
	raw, _, _ = strings.Cut(raw, "#")
	if _, q, ok := strings.Cut(raw, "?"); ok {
		return q
	}
	if strings.Contains(raw, "=") && !strings.Contains(raw, "://") {
		return raw
	}
	return ""
}

// ParseQuery returns the query parameters of raw. Only the first value of a
// repeated parameter is kept. Malformed pairs are skipped.
func ParseQuery(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(rawQuery(raw), "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		if _, dup := out[key]; !dup {
			out[key] = val
		}
	}
	return out
}

// QueryValue returns the first value of the query parameter name in raw.
func QueryValue(raw, name string) (string, bool) {
	v, ok := ParseQuery(raw)[name]
	return v, ok
}

// SetQuery sets query parameters on the URL raw, replacing existing values,
// and returns the result. An empty value removes the parameter.
func SetQuery(raw string, values map[string]string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range values {
		if v == "" {
			q.Del(k)
			continue
		}
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
