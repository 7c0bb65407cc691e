package manager

import (
	"time"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/catalogz/pkg/guide"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/table"
)

type outcome int

const (
	unchanged outcome = iota
	tookTheirs
	keptMine
)

// threeWay resolves one field. base is the last upstream value, theirs the new
// upstream value and mine the local value. mine is replaced only when it still
// equals base.
func threeWay[T any](base, theirs, mine T, eq func(a, b T) bool) (T, outcome) {
	if eq(mine, theirs) {
		return mine, unchanged
	}
	if eq(mine, base) {
		return theirs, tookTheirs
	}
	return mine, keptMine
}

// overridableField merges one upstream value into a mirror and its canonical episode
type overridableField struct {
	name          string
	episodeColumn sqlite.Column
	mirrorColumn  sqlite.Column
	merge         func(mirror *model.EpisodeMirror, episode *model.Episode, u guide.Episode) (bool, outcome)
}

func newField[T any](
	name string,
	episodeColumn, mirrorColumn sqlite.Column,
	eq func(a, b T) bool,
	mirrorValue func(*model.EpisodeMirror) *T,
	episodeValue func(*model.Episode) *T,
	upstream func(guide.Episode) T,
) overridableField {
	return overridableField{
		name:          name,
		episodeColumn: episodeColumn,
		mirrorColumn:  mirrorColumn,
		merge: func(mirror *model.EpisodeMirror, episode *model.Episode, u guide.Episode) (bool, outcome) {
			base := *mirrorValue(mirror)
			theirs := upstream(u)

			mirrorChanged := !eq(base, theirs)
			*mirrorValue(mirror) = theirs

			if episode == nil {
				return mirrorChanged, unchanged
			}

			resolved, result := threeWay(base, theirs, *episodeValue(episode), eq)
			*episodeValue(episode) = resolved
			return mirrorChanged, result
		},
	}
}

// overridableFields are the episode fields a user may diverge from upstream
var overridableFields = []overridableField{
	newField("season", table.Episode.SeasonNumber, table.EpisodeMirror.SeasonNumber, equal[int32],
		func(m *model.EpisodeMirror) *int32 { return &m.SeasonNumber },
		func(e *model.Episode) *int32 { return &e.SeasonNumber },
		func(u guide.Episode) int32 { return u.SeasonNumber },
	),
	newField("episode", table.Episode.EpisodeNumber, table.EpisodeMirror.EpisodeNumber, equal[int32],
		func(m *model.EpisodeMirror) *int32 { return &m.EpisodeNumber },
		func(e *model.Episode) *int32 { return &e.EpisodeNumber },
		func(u guide.Episode) int32 { return u.EpisodeNumber },
	),
	newField("airDate", table.Episode.AirDate, table.EpisodeMirror.AirDate, equalTime,
		func(m *model.EpisodeMirror) **time.Time { return &m.AirDate },
		func(e *model.Episode) **time.Time { return &e.AirDate },
		func(u guide.Episode) *time.Time { return u.AirDate },
	),
	newField("title", table.Episode.Title, table.EpisodeMirror.Title, equal[string],
		func(m *model.EpisodeMirror) *string { return &m.Title },
		func(e *model.Episode) *string { return &e.Title },
		func(u guide.Episode) string { return u.Title },
	),
}

func equal[T comparable](a, b T) bool {
	return a == b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
