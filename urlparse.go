package routekit

import "strings"

// parsedURL is the result of splitting a request URL into its pathname and
// raw query string. The fragment is never part of either.
type parsedURL struct {
	pathname string
	rawQuery string
}

// parseRequestURL splits a full request URL into pathname and raw query.
//
// Fast path: a string that starts with '/' and contains neither '?' nor '#'
// is the pathname in its entirety. Otherwise the pathname starts after the
// authority when a scheme marker is present, and ends at the earlier of
// query start, fragment start, or end of string.
func parseRequestURL(raw string) parsedURL {
	if raw == "" {
		return parsedURL{pathname: "/"}
	}
	if raw[0] == '/' && !strings.ContainsAny(raw, "?#") {
		return parsedURL{pathname: raw}
	}

	hashStart := strings.IndexByte(raw, '#')
	queryStart := strings.IndexByte(raw, '?')
	if hashStart >= 0 && queryStart > hashStart {
		// The '?' lives inside the fragment, so there is no query.
		queryStart = -1
	}

	end := len(raw)
	if hashStart >= 0 {
		end = hashStart
	}
	pathEnd := end
	if queryStart >= 0 && queryStart < pathEnd {
		pathEnd = queryStart
	}

	pathStart := 0
	if marker := strings.Index(raw[:pathEnd], "://"); marker >= 0 {
		authority := marker + len("://")
		slash := strings.IndexByte(raw[authority:pathEnd], '/')
		if slash < 0 {
			// Authority with no path component.
			p := parsedURL{pathname: "/"}
			if queryStart >= 0 {
				p.rawQuery = raw[queryStart+1 : end]
			}
			return p
		}
		pathStart = authority + slash
	}

	p := parsedURL{pathname: raw[pathStart:pathEnd]}
	if p.pathname == "" {
		p.pathname = "/"
	}
	if queryStart >= 0 {
		p.rawQuery = raw[queryStart+1 : end]
	}
	return p
}

// parseURL returns the cached parse result for the raw URL.
func (r *Router) parseURL(gen uint64, raw string) parsedURL {
	if p, ok := r.urlCache.get(gen, raw); ok {
		return p
	}
	p := parseRequestURL(raw)
	r.urlCache.put(gen, raw, p)
	return p
}
