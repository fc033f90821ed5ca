package routekit

import (
	"fmt"
	"net/url"
	"strings"
)

type segmentKind uint8

const (
	segLiteral segmentKind = iota // /users
	segParam                      // /:id
	segWildcard                   // /*, final segment only
)

// patternSegment is one tagged segment of a compiled pattern: literal text,
// a named param, or the trailing wildcard.
type patternSegment struct {
	text string // literal text or param name
	kind segmentKind
}

// pattern is a compiled route or middleware path pattern, reusable across
// requests against pre-split path segments.
type pattern struct {
	raw          string
	segs         []patternSegment
	staticPrefix string
	captureCount int
	hasWildcard  bool
}

// compilePattern parses a pattern string. Malformed patterns panic with a
// wrapped configuration error so they surface at registration time.
func compilePattern(raw string) *pattern {
	if raw == "" || raw[0] != '/' {
		panic(fmt.Errorf("%w: %q", ErrInvalidPattern, raw))
	}

	parts := splitSegments(raw)
	p := &pattern{
		raw:  raw,
		segs: make([]patternSegment, 0, len(parts)),
	}

	for i, part := range parts {
		switch {
		case part == "*":
			if i != len(parts)-1 {
				panic(fmt.Errorf("%w: %q", ErrWildcardPosition, raw))
			}
			p.segs = append(p.segs, patternSegment{kind: segWildcard})
			p.hasWildcard = true
			p.captureCount++
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if name == "" {
				panic(fmt.Errorf("%w: %q", ErrEmptyParamName, raw))
			}
			p.segs = append(p.segs, patternSegment{kind: segParam, text: name})
			p.captureCount++
		default:
			p.segs = append(p.segs, patternSegment{kind: segLiteral, text: part})
		}
	}

	p.staticPrefix = staticPrefixOf(p.segs)
	return p
}

// staticPrefixOf returns the literal run before the first capture or
// wildcard, or root when the pattern starts with a capture.
func staticPrefixOf(segs []patternSegment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.kind != segLiteral {
			break
		}
		b.WriteByte('/')
		b.WriteString(s.text)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// matcher matches pre-split path segments, producing captures.
// The two variants are the compiled pattern itself and the mount-prefix
// wrapper created by Mount.
type matcher interface {
	match(segs []string) (map[string]string, bool)
}

// match evaluates the pattern against pre-split candidate segments. It
// returns no partial captures: a literal mismatch or a missing param segment
// fails outright. Wildcard capture consumes the rest of the candidate,
// joined raw by '/', under the key "*".
func (p *pattern) match(segs []string) (map[string]string, bool) {
	n := len(p.segs)
	if p.hasWildcard {
		if len(segs) < n-1 {
			return nil, false
		}
	} else if len(segs) != n {
		return nil, false
	}

	if p.captureCount == 0 {
		// Capture-free patterns take a plain comparison path.
		for i := range p.segs {
			if segs[i] != p.segs[i].text {
				return nil, false
			}
		}
		return nil, true
	}

	captures := make(map[string]string, p.captureCount)
	for i, ps := range p.segs {
		switch ps.kind {
		case segLiteral:
			if segs[i] != ps.text {
				return nil, false
			}
		case segParam:
			captures[ps.text] = decodeSegment(segs[i])
		case segWildcard:
			captures["*"] = strings.Join(segs[i:], "/")
			return captures, true
		}
	}
	return captures, true
}

// prefixMatcher requires the candidate to start with the mount prefix
// segments, then re-invokes the mounted matcher against the remaining
// suffix. A nil inner matcher accepts any path under the prefix (a mounted
// global middleware).
type prefixMatcher struct {
	prefix []string
	inner  matcher
}

func (m *prefixMatcher) match(segs []string) (map[string]string, bool) {
	if len(segs) < len(m.prefix) {
		return nil, false
	}
	for i, p := range m.prefix {
		if segs[i] != p {
			return nil, false
		}
	}
	if m.inner == nil {
		return nil, true
	}
	return m.inner.match(segs[len(m.prefix):])
}

// decodeSegment percent-decodes a captured param segment, keeping the raw
// text when it is not valid percent-encoding.
func decodeSegment(seg string) string {
	if !strings.ContainsRune(seg, '%') {
		return seg
	}
	decoded, err := url.PathUnescape(seg)
	if err != nil {
		return seg
	}
	return decoded
}

// compile returns the shared compiled form of a pattern string, keyed by
// pattern text across routes and middleware. Compilation is pure, but the
// memo still retires with the generation counter so every mutation
// invalidates every cache uniformly.
func (r *Router) compile(raw string) *pattern {
	gen := r.generation()
	if p, ok := r.patterns.get(gen, raw); ok {
		return p
	}
	p := compilePattern(raw)
	r.patterns.put(gen, raw, p)
	return p
}
