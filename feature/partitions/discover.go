package partitions

import (
	"context"
	"fmt"
	"strings"

	"partition-manager/core/storage"
)

// ObjectStore is the slice of object storage that discovery and
// reconciliation depend on.
type ObjectStore interface {
	// ListCommonPrefixes enumerates one level of directories under prefix.
	ListCommonPrefixes(ctx context.Context, prefix string) ([]string, error)
	// HasAnyObject reports whether at least one object exists under prefix.
	HasAnyObject(ctx context.Context, prefix string) (bool, error)
}

var _ ObjectStore = (*storage.Lister)(nil)

// Discovery is one result from walking a table root. Err is set when an
// underlying listing failed; the walk stops after the first error.
type Discovery struct {
	Descriptor Descriptor
	Err        error
}

// Discoverer walks a table's storage prefix and yields the partitions that
// physically exist under it.
type Discoverer struct {
	store ObjectStore
}

// NewDiscoverer creates a Discoverer backed by the given store.
func NewDiscoverer(store ObjectStore) *Discoverer {
	return &Discoverer{store: store}
}

// Discover walks root breadth-first and sends a Discovery for every
// directory whose path parses as a full partition key. A matched directory
// is a leaf: nothing below it is visited. Directories that reach four
// segments without matching are abandoned. Each call walks from scratch, so
// the sequence is restartable. The channel is closed when the walk
// completes, after the first error, or once ctx is done. An empty or
// missing root yields a closed channel with no results.
func (d *Discoverer) Discover(ctx context.Context, root string) <-chan Discovery {
	out := make(chan Discovery)
	go func() {
		defer close(out)
		d.walk(ctx, root, out)
	}()
	return out
}

// DiscoverAll materializes Discover into a slice, preserving walk order.
func (d *Discoverer) DiscoverAll(ctx context.Context, root string) ([]Descriptor, error) {
	var found []Descriptor
	for res := range d.Discover(ctx, root) {
		if res.Err != nil {
			return nil, res.Err
		}
		found = append(found, res.Descriptor)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return found, nil
}

type walkItem struct {
	prefix   string
	segments []string
}

func (d *Discoverer) walk(ctx context.Context, root string, out chan<- Discovery) {
	queue := []walkItem{{prefix: storage.NormalizeLocation(root)}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		children, err := d.store.ListCommonPrefixes(ctx, item.prefix)
		if err != nil {
			send(ctx, out, Discovery{Err: fmt.Errorf("failed to list %s: %w", item.prefix, err)})
			return
		}

		for _, child := range children {
			segments := make([]string, len(item.segments)+1)
			copy(segments, item.segments)
			segments[len(segments)-1] = childSegment(item.prefix, child)

			value, raw, state := Match(segments)
			switch state {
			case MatchComplete:
				found := Discovery{Descriptor: Descriptor{Value: value, Raw: raw, Location: child}}
				if !send(ctx, out, found) {
					return
				}
			case MatchIncomplete:
				queue = append(queue, walkItem{prefix: child, segments: segments})
			}
		}
	}
}

func childSegment(parent, child string) string {
	return strings.TrimSuffix(strings.TrimPrefix(child, parent), "/")
}

func send(ctx context.Context, out chan<- Discovery, d Discovery) bool {
	select {
	case out <- d:
		return true
	case <-ctx.Done():
		return false
	}
}
