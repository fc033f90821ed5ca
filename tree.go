package routekit

import "strings"

// The routing structure is one segment trie per HTTP method. Each node
// carries three branch kinds (a keyed literal child set, at most one param
// branch, at most one wildcard branch) plus an optional terminal payload.
// Branch precedence during matching is literal over param over wildcard,
// structurally: each kind is tried in that order and the first applicable
// branch is taken.

// endpoint is the terminal payload attached to a trie node: the ordered
// handler list and the owning route.
type endpoint struct {
	routeID  int64
	pattern  string
	handlers []Handler
}

type node struct {
	literal  map[string]*node
	param    *node
	wildcard *node
	leaf     *endpoint

	// paramName is fixed by the first route that creates the param branch;
	// later routes reusing the position inherit it silently. Known ambiguity,
	// kept deliberately.
	paramName string
}

// insert walks the compiled pattern segments from the root, creating
// branches as needed, and attaches the endpoint at the final node. An
// existing terminal payload at that node is replaced: last registration
// wins.
func (n *node) insert(segs []patternSegment, ep *endpoint) {
	cur := n
	for _, seg := range segs {
		switch seg.kind {
		case segLiteral:
			if cur.literal == nil {
				cur.literal = make(map[string]*node)
			}
			child, ok := cur.literal[seg.text]
			if !ok {
				child = &node{}
				cur.literal[seg.text] = child
			}
			cur = child
		case segParam:
			if cur.param == nil {
				cur.param = &node{}
				cur.paramName = seg.text
			}
			cur = cur.param
		case segWildcard:
			if cur.wildcard == nil {
				cur.wildcard = &node{}
			}
			cur.wildcard.leaf = ep
			// Nothing may follow a wildcard; compilePattern guarantees it.
			return
		}
	}
	cur.leaf = ep
}

// match walks the input segments from the root. For each segment it tries an
// exact literal child, then the param branch (capturing the decoded segment
// under the branch's fixed name), then the wildcard branch (capturing the
// remaining raw segments joined by '/' and stopping). There is no
// backtracking: if no branch applies, the match fails. A match succeeds only
// when the landed node carries a terminal payload.
func (n *node) match(segs []string) (*endpoint, map[string]string) {
	cur := n
	var captures map[string]string

	for i, seg := range segs {
		if child, ok := cur.literal[seg]; ok {
			cur = child
			continue
		}
		if cur.param != nil {
			if captures == nil {
				captures = make(map[string]string)
			}
			captures[cur.paramName] = decodeSegment(seg)
			cur = cur.param
			continue
		}
		if cur.wildcard != nil {
			if captures == nil {
				captures = make(map[string]string)
			}
			captures["*"] = strings.Join(segs[i:], "/")
			cur = cur.wildcard
			break
		}
		return nil, nil
	}

	if cur.leaf == nil {
		return nil, nil
	}
	return cur.leaf, captures
}
