package routekit

// splitSegments splits a path into its non-empty segments, so leading,
// trailing and duplicate slashes collapse.
func splitSegments(path string) []string {
	if path == "" {
		return nil
	}

	// Estimate capacity
	maxSegments := 1
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			maxSegments++
		}
	}

	segments := make([]string, 0, maxSegments)
	start := 0

	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}

	return segments
}

// segments returns the cached segment list for the path. Cached slices are
// shared between requests and must be treated as read-only.
func (r *Router) segments(gen uint64, path string) []string {
	if segs, ok := r.segCache.get(gen, path); ok {
		return segs
	}
	segs := splitSegments(path)
	r.segCache.put(gen, path, segs)
	return segs
}
