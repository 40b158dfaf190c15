package partitions

import (
	"fmt"
	"sort"

	"partition-manager/core/catalog"
)

// DuplicateValueError reports a catalog listing that carries the same
// partition key twice. Reconciliation cannot proceed against an ambiguous
// index, so this aborts the run for the table.
type DuplicateValueError struct {
	Value  Value
	First  string
	Second string
}

func (e *DuplicateValueError) Error() string {
	return fmt.Sprintf("duplicate partition value %s in catalog: %s and %s", e.Value, e.First, e.Second)
}

// Index is an in-memory lookup of catalog partitions keyed by value.
type Index struct {
	byValue map[Value]Descriptor
}

// BuildIndex parses a catalog partition listing into an Index. It fails on
// values that are not four integers and on duplicate keys. Two listings
// whose values differ only in zero padding collide, since they name the
// same partition.
func BuildIndex(parts []catalog.Partition) (*Index, error) {
	byValue := make(map[Value]Descriptor, len(parts))
	for _, p := range parts {
		value, err := ParseValues(p.Values)
		if err != nil {
			return nil, fmt.Errorf("failed to index partition at %s: %w", p.Location, err)
		}
		if prev, ok := byValue[value]; ok {
			return nil, &DuplicateValueError{Value: value, First: prev.Location, Second: p.Location}
		}
		byValue[value] = Descriptor{Value: value, Raw: p.Values, Location: p.Location}
	}
	return &Index{byValue: byValue}, nil
}

// Get returns the catalog partition with the given key.
func (i *Index) Get(v Value) (Descriptor, bool) {
	d, ok := i.byValue[v]
	return d, ok
}

// Len returns the number of indexed partitions.
func (i *Index) Len() int {
	return len(i.byValue)
}

// All returns the indexed partitions ordered by value.
func (i *Index) All() []Descriptor {
	all := make([]Descriptor, 0, len(i.byValue))
	for _, d := range i.byValue {
		all = append(all, d)
	}
	sort.Slice(all, func(a, b int) bool {
		return all[a].Value.Less(all[b].Value)
	})
	return all
}
