package routekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertPattern(t *testing.T, root *node, raw string, id int64) {
	t.Helper()
	root.insert(compilePattern(raw).segs, &endpoint{routeID: id, pattern: raw})
}

func TestTreeMatch(t *testing.T) {
	t.Parallel()

	t.Run("literal match", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/users/list", 1)

		ep, captures := root.match([]string{"users", "list"})
		require.NotNil(t, ep)
		assert.Equal(t, int64(1), ep.routeID)
		assert.Nil(t, captures)
	})

	t.Run("root match", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/", 1)

		ep, _ := root.match(nil)
		require.NotNil(t, ep)
		assert.Equal(t, int64(1), ep.routeID)
	})

	t.Run("param capture", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/users/:id", 1)

		ep, captures := root.match([]string{"users", "42"})
		require.NotNil(t, ep)
		assert.Equal(t, map[string]string{"id": "42"}, captures)
	})

	t.Run("param capture is decoded", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/users/:id", 1)

		_, captures := root.match([]string{"users", "a%20b"})
		assert.Equal(t, "a b", captures["id"])
	})

	t.Run("wildcard captures the raw remainder", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/static/*", 1)

		ep, captures := root.match([]string{"static", "css", "a%20b.css"})
		require.NotNil(t, ep)
		assert.Equal(t, "css/a%20b.css", captures["*"])
	})

	t.Run("wildcard needs at least one segment", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/static/*", 1)

		ep, _ := root.match([]string{"static"})
		assert.Nil(t, ep)
	})

	t.Run("literal beats param beats wildcard", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/u/me", 1)
		insertPattern(t, root, "/u/:id", 2)
		insertPattern(t, root, "/u/*", 3)

		ep, _ := root.match([]string{"u", "me"})
		require.NotNil(t, ep)
		assert.Equal(t, int64(1), ep.routeID)

		ep, _ = root.match([]string{"u", "42"})
		require.NotNil(t, ep)
		assert.Equal(t, int64(2), ep.routeID)

		ep, _ = root.match([]string{"u", "42", "deep"})
		require.NotNil(t, ep)
		assert.Equal(t, int64(3), ep.routeID)
	})

	t.Run("no backtracking out of a committed branch", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/u/me/profile", 1)
		insertPattern(t, root, "/u/:id/settings", 2)

		// "me" takes the literal branch, which has no "settings" child; the
		// param branch is never reconsidered.
		ep, _ := root.match([]string{"u", "me", "settings"})
		assert.Nil(t, ep)
	})

	t.Run("interior node without payload is a miss", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/a/b/c", 1)

		ep, _ := root.match([]string{"a", "b"})
		assert.Nil(t, ep)
	})

	t.Run("param branch keeps the first registered name", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/u/:id", 1)
		insertPattern(t, root, "/u/:userID/posts", 2)

		_, captures := root.match([]string{"u", "7", "posts"})
		assert.Equal(t, map[string]string{"id": "7"}, captures)
	})

	t.Run("reinsert replaces the payload", func(t *testing.T) {
		t.Parallel()

		root := &node{}
		insertPattern(t, root, "/dup", 1)
		insertPattern(t, root, "/dup", 2)

		ep, _ := root.match([]string{"dup"})
		require.NotNil(t, ep)
		assert.Equal(t, int64(2), ep.routeID)
	})
}
