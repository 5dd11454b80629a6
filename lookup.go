package tableau

import (
	"fmt"
	"slices"
	"sort"
)

// Disposable is an entity an Index can release.
type Disposable interface {
	comparable
	Dispose()
}

// TagPolicy controls what Prune does with the tag map.
type TagPolicy uint8

const (
	// ClearTags empties the tag map; the configure pass that follows
	// re-tags every retained entity.
	ClearTags TagPolicy = iota
	// KeepTags leaves tags of retained entities in place.
	KeepTags
)

// Index binds entity identity to configuration for one kind: identifier to
// entity, tag to entities, entity to config and entity to identifier.
type Index[E Disposable, C any] struct {
	byIdentifier map[string]E
	byTag        map[string][]E
	configBy     map[E]C
	identifierBy map[E]string
}

// NewIndex returns an empty index.
func NewIndex[E Disposable, C any]() *Index[E, C] {
	return &Index[E, C]{
		byIdentifier: make(map[string]E),
		byTag:        make(map[string][]E),
		configBy:     make(map[E]C),
		identifierBy: make(map[E]string),
	}
}

// Store binds id to entity and config, and appends the entity to tag's list
// when tag is non-empty. Storing an identifier again replaces its config.
func (ix *Index[E, C]) Store(id string, entity E, config C, tag string) {
	if prev, ok := ix.byIdentifier[id]; ok && prev != entity {
		delete(ix.configBy, prev)
		delete(ix.identifierBy, prev)
		ix.untag(prev)
	}
	ix.byIdentifier[id] = entity
	ix.configBy[entity] = config
	ix.identifierBy[entity] = id
	if tag != "" && !slices.Contains(ix.byTag[tag], entity) {
		ix.byTag[tag] = append(ix.byTag[tag], entity)
	}
}

// Get returns the entity bound to id.
func (ix *Index[E, C]) Get(id string) (E, bool) {
	e, ok := ix.byIdentifier[id]
	return e, ok
}

// MustGet returns the entity bound to id and panics when there is none.
// Configuration is validated before it reaches the index, so a miss here is
// a bug in the caller.
func (ix *Index[E, C]) MustGet(id string) E {
	e, ok := ix.byIdentifier[id]
	if !ok {
		panic(fmt.Sprintf("tableau: no entity with identifier %q", id))
	}
	return e
}

// Tagged returns the entities carrying tag, in the order they were tagged.
// The slice must not be modified.
func (ix *Index[E, C]) Tagged(tag string) []E {
	return ix.byTag[tag]
}

// Config returns the configuration bound to entity.
func (ix *Index[E, C]) Config(entity E) (C, bool) {
	c, ok := ix.configBy[entity]
	return c, ok
}

// Identifier returns the identifier bound to entity.
func (ix *Index[E, C]) Identifier(entity E) (string, bool) {
	id, ok := ix.identifierBy[entity]
	return id, ok
}

// Len returns the number of entities.
func (ix *Index[E, C]) Len() int { return len(ix.byIdentifier) }

// Identifiers returns every identifier in sorted order.
func (ix *Index[E, C]) Identifiers() []string {
	ids := make([]string, 0, len(ix.byIdentifier))
	for id := range ix.byIdentifier {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Prune disposes and forgets every entity whose identifier is not in keep.
// A nil keep set releases everything. Entities present in keep are retained
// untouched. It returns the identifiers that were released, sorted.
func (ix *Index[E, C]) Prune(keep map[string]struct{}, policy TagPolicy) []string {
	var removed []string
	for id, e := range ix.byIdentifier {
		if _, ok := keep[id]; ok {
			continue
		}
		delete(ix.byIdentifier, id)
		delete(ix.configBy, e)
		delete(ix.identifierBy, e)
		if policy == KeepTags {
			ix.untag(e)
		}
		e.Dispose()
		removed = append(removed, id)
	}
	if policy == ClearTags {
		clear(ix.byTag)
	}
	sort.Strings(removed)
	return removed
}

// Clean disposes every entity and empties the index.
func (ix *Index[E, C]) Clean() {
	for _, e := range ix.byIdentifier {
		e.Dispose()
	}
	clear(ix.byIdentifier)
	clear(ix.byTag)
	clear(ix.configBy)
	clear(ix.identifierBy)
}

func (ix *Index[E, C]) untag(e E) {
	for tag, list := range ix.byTag {
		i := slices.Index(list, e)
		if i < 0 {
			continue
		}
		list = slices.Delete(list, i, i+1)
		if len(list) == 0 {
			delete(ix.byTag, tag)
		} else {
			ix.byTag[tag] = list
		}
	}
}

// keySet collects the identifiers of a configuration map. A nil map yields a
// nil set.
func keySet[V any](m map[string]V) map[string]struct{} {
	if m == nil {
		return nil
	}
	set := make(map[string]struct{}, len(m))
	for id := range m {
		set[id] = struct{}{}
	}
	return set
}

// sortedKeys returns the identifiers of a configuration map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
