package manager

import (
	"cmp"
	"slices"
	"time"

	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
)

// compareTimes orders earlier first with nil last
func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// compareDateAdded orders episodes by earliest date_added, nil last, then lowest id
func compareDateAdded(a, b *model.Episode) int {
	if c := compareTimes(a.DateAdded, b.DateAdded); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// compareWatermark orders mirrors by most recent last_modified, nil last, then lowest id
func compareWatermark(a, b *model.EpisodeMirror) int {
	switch {
	case a.LastModified == nil && b.LastModified != nil:
		return 1
	case a.LastModified != nil && b.LastModified == nil:
		return -1
	case a.LastModified != nil && b.LastModified != nil:
		if c := b.LastModified.Compare(*a.LastModified); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID, b.ID)
}

// earliest returns the earliest non-nil time
func earliest(times ...*time.Time) *time.Time {
	var first *time.Time
	for _, t := range times {
		if t == nil {
			continue
		}
		if first == nil || t.Before(*first) {
			first = t
		}
	}
	return first
}

// chooseSurvivor picks the member with the earliest date_added. When every
// date_added is nil it picks the member whose mirror has the most recent
// watermark. Without either it returns ErrAmbiguousGroup.
func chooseSurvivor(members []*model.Episode, mirrorOf func(*model.Episode) *model.EpisodeMirror) (*model.Episode, error) {
	if len(members) == 0 {
		return nil, ErrAmbiguousGroup
	}

	byDate := slices.MinFunc(members, compareDateAdded)
	if byDate.DateAdded != nil {
		return byDate, nil
	}

	var survivor *model.Episode
	var survivorMirror *model.EpisodeMirror
	for _, e := range members {
		mirror := mirrorOf(e)
		if mirror == nil || mirror.LastModified == nil {
			continue
		}

		if survivor == nil {
			survivor, survivorMirror = e, mirror
			continue
		}

		c := compareTimes(survivorMirror.LastModified, mirror.LastModified)
		if c < 0 || (c == 0 && e.ID < survivor.ID) {
			survivor, survivorMirror = e, mirror
		}
	}

	if survivor == nil {
		return nil, ErrAmbiguousGroup
	}
	return survivor, nil
}
