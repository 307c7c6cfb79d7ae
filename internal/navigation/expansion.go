package navigation

import (
	"sort"
	"strings"

	"github.com/GriffinCanCode/Coursebook/backend/internal/catalog"
)

// Expansion is an immutable set of expanded tree node ids. Every operation
// returns a new set; the receiver is never modified.
type Expansion struct {
	ids map[catalog.ID]struct{}
}

// NewExpansion returns a set holding ids
func NewExpansion(ids ...catalog.ID) Expansion {
	return Expansion{}.With(ids...)
}

// Has reports whether id is expanded
func (e Expansion) Has(id catalog.ID) bool {
	_, ok := e.ids[id]
	return ok
}

// Len returns the number of expanded ids
func (e Expansion) Len() int {
	return len(e.ids)
}

// With returns a set that also holds ids
func (e Expansion) With(ids ...catalog.ID) Expansion {
	next := e.clone(len(ids))
	for _, id := range ids {
		if id != "" {
			next[id] = struct{}{}
		}
	}
	return Expansion{ids: next}
}

// Without returns a set that no longer holds id
func (e Expansion) Without(id catalog.ID) Expansion {
	if !e.Has(id) {
		return e
	}
	next := e.clone(0)
	delete(next, id)
	return Expansion{ids: next}
}

// Toggle flips id
func (e Expansion) Toggle(id catalog.ID) Expansion {
	if e.Has(id) {
		return e.Without(id)
	}
	return e.With(id)
}

// IDs returns the expanded ids in sorted order
func (e Expansion) IDs() []catalog.ID {
	ids := make([]catalog.ID, 0, len(e.ids))
	for id := range e.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Encode renders the set as a sorted comma list for a query parameter
func (e Expansion) Encode() string {
	ids := e.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

// Decode parses a comma list produced by Encode. Blank entries are ignored.
func Decode(s string) Expansion {
	var ids []catalog.ID
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, catalog.ID(part))
		}
	}
	return NewExpansion(ids...)
}

func (e Expansion) clone(extra int) map[catalog.ID]struct{} {
	next := make(map[catalog.ID]struct{}, len(e.ids)+extra)
	for id := range e.ids {
		next[id] = struct{}{}
	}
	return next
}
