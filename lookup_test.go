package tableau

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type token struct {
	name     string
	disposed bool
}

func (t *token) Dispose() { t.disposed = true }

type tokenConfig struct{ n int }

func newTokenIndex() (*Index[*token, *tokenConfig], map[string]*token) {
	ix := NewIndex[*token, *tokenConfig]()
	tokens := map[string]*token{}
	for i, id := range []string{"a", "b", "c"} {
		tok := &token{name: id}
		tokens[id] = tok
		tag := "odd"
		if i%2 == 1 {
			tag = "even"
		}
		ix.Store(id, tok, &tokenConfig{n: i}, tag)
	}
	return ix, tokens
}

func TestIndexStoreAndLookup(t *testing.T) {
	ix, tokens := newTokenIndex()

	got, ok := ix.Get("b")
	require.True(t, ok)
	assert.Same(t, tokens["b"], got)

	cfg, ok := ix.Config(tokens["c"])
	require.True(t, ok)
	assert.Equal(t, 2, cfg.n)

	id, ok := ix.Identifier(tokens["a"])
	require.True(t, ok)
	assert.Equal(t, "a", id)

	assert.Equal(t, []*token{tokens["a"], tokens["c"]}, ix.Tagged("odd"))
	assert.Equal(t, []*token{tokens["b"]}, ix.Tagged("even"))
	assert.Empty(t, ix.Tagged("none"))
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, []string{"a", "b", "c"}, ix.Identifiers())

	_, ok = ix.Get("zzz")
	assert.False(t, ok)
}

func TestIndexMustGetPanicsOnMiss(t *testing.T) {
	ix, tokens := newTokenIndex()
	assert.Same(t, tokens["a"], ix.MustGet("a"))
	assert.Panics(t, func() { ix.MustGet("missing") })
}

func TestIndexStoreTagsOnce(t *testing.T) {
	ix, tokens := newTokenIndex()
	ix.Store("a", tokens["a"], &tokenConfig{n: 9}, "odd")
	assert.Len(t, ix.Tagged("odd"), 2)
	cfg, _ := ix.Config(tokens["a"])
	assert.Equal(t, 9, cfg.n)
}

func TestIndexStoreReplacesEntity(t *testing.T) {
	ix, tokens := newTokenIndex()
	fresh := &token{name: "a2"}
	ix.Store("a", fresh, &tokenConfig{}, "")

	got, _ := ix.Get("a")
	assert.Same(t, fresh, got)
	_, ok := ix.Identifier(tokens["a"])
	assert.False(t, ok)
	assert.NotContains(t, ix.Tagged("odd"), tokens["a"])
}

func TestIndexPruneRetainsOverlap(t *testing.T) {
	ix, tokens := newTokenIndex()
	removed := ix.Prune(map[string]struct{}{"a": {}, "c": {}, "new": {}}, ClearTags)

	assert.Equal(t, []string{"b"}, removed)
	assert.True(t, tokens["b"].disposed)
	assert.False(t, tokens["a"].disposed)
	assert.False(t, tokens["c"].disposed)

	got, ok := ix.Get("a")
	require.True(t, ok)
	assert.Same(t, tokens["a"], got)
	_, ok = ix.Get("b")
	assert.False(t, ok)
	_, ok = ix.Config(tokens["b"])
	assert.False(t, ok)
	_, ok = ix.Identifier(tokens["b"])
	assert.False(t, ok)

	assert.Empty(t, ix.Tagged("odd"))
	assert.Empty(t, ix.Tagged("even"))
}

func TestIndexPruneKeepTags(t *testing.T) {
	ix, tokens := newTokenIndex()
	ix.Prune(map[string]struct{}{"b": {}, "c": {}}, KeepTags)

	assert.Equal(t, []*token{tokens["c"]}, ix.Tagged("odd"))
	assert.Equal(t, []*token{tokens["b"]}, ix.Tagged("even"))
}

func TestIndexPruneNilReleasesAll(t *testing.T) {
	ix, tokens := newTokenIndex()
	removed := ix.Prune(nil, ClearTags)

	assert.Equal(t, []string{"a", "b", "c"}, removed)
	assert.Zero(t, ix.Len())
	for _, tok := range tokens {
		assert.True(t, tok.disposed, tok.name)
	}
}

func TestIndexClean(t *testing.T) {
	ix, tokens := newTokenIndex()
	ix.Clean()

	assert.Zero(t, ix.Len())
	assert.Empty(t, ix.Tagged("odd"))
	for _, tok := range tokens {
		assert.True(t, tok.disposed, tok.name)
		_, ok := ix.Config(tok)
		assert.False(t, ok)
	}
}

func TestKeySet(t *testing.T) {
	assert.Nil(t, keySet[int](nil))
	assert.Equal(t, map[string]struct{}{"x": {}, "y": {}}, keySet(map[string]int{"x": 1, "y": 2}))
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(map[string]bool{"c": true, "a": true, "b": false}))
}
