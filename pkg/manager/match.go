package manager

import (
	"slices"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type numbering struct {
	season int32
	number int32
}

func numberingOf(e *model.Episode) numbering {
	return numbering{season: e.SeasonNumber, number: e.EpisodeNumber}
}

func (n numbering) stub() bool {
	return storage.IsStub(n.season, n.number)
}

// episodeIndex is a read-only view of one series' live mirrors and canonical episodes
type episodeIndex struct {
	mirrors          []*model.EpisodeMirror
	mirrorByExternal map[string]*model.EpisodeMirror
	mirrorsAt        map[numbering][]*model.EpisodeMirror
	episodeByMirror  map[int32]*model.Episode
	episodesAt       map[numbering][]*model.Episode
}

// newEpisodeIndex indexes live rows. Input slices are expected in id order.
func newEpisodeIndex(episodes []*model.Episode, mirrors []*model.EpisodeMirror) *episodeIndex {
	ix := &episodeIndex{
		mirrorByExternal: make(map[string]*model.EpisodeMirror),
		mirrorsAt:        make(map[numbering][]*model.EpisodeMirror),
		episodeByMirror:  make(map[int32]*model.Episode),
		episodesAt:       make(map[numbering][]*model.Episode),
	}

	for _, m := range mirrors {
		if m.Retired {
			continue
		}
		ix.mirrors = append(ix.mirrors, m)
		if _, ok := ix.mirrorByExternal[m.ExternalID]; !ok {
			ix.mirrorByExternal[m.ExternalID] = m
		}
		n := numbering{season: m.SeasonNumber, number: m.EpisodeNumber}
		ix.mirrorsAt[n] = append(ix.mirrorsAt[n], m)
	}

	for _, e := range episodes {
		ix.addEpisode(e)
	}

	return ix
}

func (ix *episodeIndex) addEpisode(e *model.Episode) {
	if e.Retired {
		return
	}

	if e.EpisodeMirrorID != nil {
		if _, ok := ix.episodeByMirror[*e.EpisodeMirrorID]; !ok {
			ix.episodeByMirror[*e.EpisodeMirrorID] = e
		}
	}

	n := numberingOf(e)
	if !n.stub() {
		ix.episodesAt[n] = append(ix.episodesAt[n], e)
	}
}

// mirrorByExternalID is the identity lookup
func (ix *episodeIndex) mirrorByExternalID(externalID string) *model.EpisodeMirror {
	return ix.mirrorByExternal[externalID]
}

// mirrorAt is the numbering lookup. It returns the lowest id mirror at n that
// exclude does not reject.
func (ix *episodeIndex) mirrorAt(n numbering, exclude func(*model.EpisodeMirror) bool) *model.EpisodeMirror {
	for _, m := range ix.mirrorsAt[n] {
		if exclude != nil && exclude(m) {
			continue
		}
		return m
	}
	return nil
}

// episodeForMirror returns the live canonical episode linked to a mirror
func (ix *episodeIndex) episodeForMirror(mirrorID int32) *model.Episode {
	return ix.episodeByMirror[mirrorID]
}

// episodeAt returns the lowest id live episode at a non-stub numbering
func (ix *episodeIndex) episodeAt(n numbering, exclude func(*model.Episode) bool) *model.Episode {
	if n.stub() {
		return nil
	}
	for _, e := range ix.episodesAt[n] {
		if exclude != nil && exclude(e) {
			continue
		}
		return e
	}
	return nil
}

// match finds the canonical episode for an episode of another series: first by
// the external id of its mirror, then by non-stub numbering
func (ix *episodeIndex) match(episode *model.Episode, mirror *model.EpisodeMirror) *model.Episode {
	if mirror != nil {
		if found := ix.mirrorByExternalID(mirror.ExternalID); found != nil {
			if e := ix.episodeForMirror(found.ID); e != nil {
				return e
			}
		}
	}

	return ix.episodeAt(numberingOf(episode), nil)
}

// normalizeTitle folds case, strips accents and punctuation and collapses whitespace
func normalizeTitle(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, title)
	if err != nil {
		stripped = title
	}

	// a Caser is stateful and can't be shared between goroutines
	folded := cases.Fold().String(stripped)
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == '\'' || r == '’':
			return -1
		default:
			return ' '
		}
	}, folded)

	return strings.Join(strings.Fields(mapped), " ")
}

// titleSimilarity returns a score between 0 and 1. Empty titles never match.
func titleSimilarity(a, b string) float64 {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	longest := max(len([]rune(na)), len([]rune(nb)))
	distance := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(distance)/float64(longest)
}

// titleMatchesAny reports whether title is similar enough to any of candidates
func titleMatchesAny(title string, candidates []string, threshold float64) bool {
	return slices.ContainsFunc(candidates, func(c string) bool {
		return titleSimilarity(title, c) >= threshold
	})
}
