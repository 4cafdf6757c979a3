package lockedit

import (
	"maps"
	"slices"

	"github.com/pkg/errors"
)

// Locks maps region names to the line ranges they own in one Buffer. Registered ranges never overlap.
type Locks struct {
	ranges map[string]Range
}

// NewLocks creates an empty index.
func NewLocks() *Locks {
	return &Locks{ranges: make(map[string]Range)}
}

// Len returns the number of registered regions.
func (l *Locks) Len() int {
	return len(l.ranges)
}

// Contains returns whether name is registered.
func (l *Locks) Contains(name string) bool {
	_, found := l.ranges[name]
	return found
}

// Lookup returns the range owned by name.
func (l *Locks) Lookup(name string) (Range, error) {
	r, found := l.ranges[name]
	if !found {
		return Range{}, errors.Wrapf(ErrNotFound, "lock %q", name)
	}
	return r, nil
}

// Register sets the range owned by name, replacing any previous range for the same name.
//
// If check is true, r is tested against every other region with the closed-form test
// max(start_a, start_b) <= min(stop_a, stop_b), so even touching ranges are refused.
func (l *Locks) Register(name string, r Range, check bool) error {
	if check {
		for _, other := range l.Names() {
			if other == name {
				continue
			}
			o := l.ranges[other]
			if max(r.Start, o.Start) <= min(r.Stop, o.Stop) {
				return errors.Wrapf(ErrConflict, "lock %q at %s intersects lock %q at %s", name, r, other, o)
			}
		}
	}
	l.ranges[name] = r
	return nil
}

// Unregister removes name. It is a no-op if name is not registered.
func (l *Locks) Unregister(name string) {
	delete(l.ranges, name)
}

// Names returns the registered names, sorted.
func (l *Locks) Names() []string {
	return slices.Sorted(maps.Keys(l.ranges))
}

// Snapshot returns a copy of the name to range mapping.
func (l *Locks) Snapshot() map[string]Range {
	return maps.Clone(l.ranges)
}

// crossings returns how many boundaries of region fall inside edit: 0 if the edit is empty, disjoint
// from the region or strictly inside its body; 2 if the edit covers the whole region; 1 otherwise. The
// first and last lines of a region hold its markers, so an edit touching either of them alone tears it.
func crossings(region, edit Range) int {
	if edit.IsEmpty() {
		return 0
	}
	if edit.Stop <= region.Start || edit.Start >= region.Stop {
		return 0
	}
	if edit.Start <= region.Start && region.Stop <= edit.Stop {
		return 2
	}
	if edit.Start > region.Start && edit.Stop < region.Stop {
		return 0
	}
	return 1
}

// OverlapCounts returns, for every region whose boundaries are captured by edit, the number of boundaries
// captured: 1 means the edit would tear the region, 2 means the edit replaces it whole.
// Regions untouched by edit are omitted.
func (l *Locks) OverlapCounts(edit Range) map[string]int {
	counts := make(map[string]int)
	for name, r := range l.ranges {
		if n := crossings(r, edit); n > 0 {
			counts[name] = n
		}
	}
	return counts
}

// ShiftAll moves every region after a Buffer.Replace of edit that changed the line count by delta.
//
// Boundaries after edit.Start move by delta. A region starting exactly at edit.Start moves as well when the
// edit is a pure insertion: inserted lines land before it. Regions that collapse to empty are dropped.
func (l *Locks) ShiftAll(edit Range, delta int) {
	if delta == 0 {
		return
	}
	origin := edit.Start
	insertion := edit.IsEmpty()
	for name, r := range l.ranges {
		if r.Start > origin || (insertion && r.Start == origin) {
			r.Start += delta
		}
		if r.Stop > origin {
			r.Stop += delta
		}
		if r.IsEmpty() {
			delete(l.ranges, name)
			continue
		}
		l.ranges[name] = r
	}
}

