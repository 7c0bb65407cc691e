package library

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/storage"
)

const (
	numberedPattern = `^(.+?)\s+-\s+[sS](\d{1,3})[eE](\d{1,3})(?:\s+-\s+(.*))?$`
	titledPattern   = `^(.+?)\s+-\s+(.+)$`

	// recordings are expected directly in root or in one series directory
	maxNesting = 1
)

var (
	numberedRegex   = regexp.MustCompile(numberedPattern)
	titledRegex     = regexp.MustCompile(titledPattern)
	videoExtensions = []string{".mp4", ".avi", ".mkv", ".m4v", ".ts", ".m2ts", ".mpg"}
)

// RecordingFile is a recorded program found on disk
type RecordingFile struct {
	Name          string    `json:"name"`
	RelativePath  string    `json:"path"`
	AbsolutePath  string    `json:"absolutePath"`
	Size          int64     `json:"size"`
	SeriesTitle   string    `json:"seriesTitle"`
	SeasonNumber  int32     `json:"season"`
	EpisodeNumber int32     `json:"episode"`
	EpisodeTitle  string    `json:"episodeTitle"`
	CapturedAt    time.Time `json:"capturedAt"`
}

func (rf RecordingFile) String() string {
	return fmt.Sprintf("series: %s, S%02dE%02d %q, path: %s, size: %s",
		rf.SeriesTitle, rf.SeasonNumber, rf.EpisodeNumber, rf.EpisodeTitle, rf.RelativePath, humanize.Bytes(uint64(max(rf.Size, 0))))
}

// Numbered reports whether the file name carried a season and episode number
func (rf RecordingFile) Numbered() bool {
	return !storage.IsStub(rf.SeasonNumber, rf.EpisodeNumber)
}

// ProgramID identifies the recording across scans
func (rf RecordingFile) ProgramID() string {
	return "file:" + rf.RelativePath
}

// Library scans a DVR recordings directory
type Library struct {
	recordings fs.FS
	root       string
}

// New creates a Library over recordings. root is the on disk location of recordings
// and is only used to build absolute paths.
func New(recordings fs.FS, root string) *Library {
	return &Library{
		recordings: recordings,
		root:       root,
	}
}

// FindRecordings walks the library and parses every video file it finds
func (l *Library) FindRecordings(ctx context.Context) ([]RecordingFile, error) {
	log := logger.FromCtx(ctx)

	recordings := []RecordingFile{}
	err := fs.WalkDir(l.recordings, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// just skip this dir for now if there's an issue
			log.Debugw("skipping unreadable path", "path", p, "error", err)
			return fs.SkipDir
		}

		if d.IsDir() {
			if p != "." && levelsOfNesting(p) >= maxNesting {
				log.Debugw("skipping", "dir", p)
				return fs.SkipDir
			}
			return nil
		}

		if !isVideoFile(p) {
			return nil
		}

		rf, structured := parseName(d.Name())
		if dir := seriesFromDir(p); !structured && dir != "" {
			// a bare name inside a series directory is the episode title
			rf.EpisodeTitle = rf.SeriesTitle
			rf.SeriesTitle = dir
		}
		rf.RelativePath = p
		if l.root != "" {
			rf.AbsolutePath = filepath.Join(l.root, filepath.FromSlash(p))
		}

		info, err := d.Info()
		if err == nil {
			rf.Size = info.Size()
			rf.CapturedAt = info.ModTime().UTC().Truncate(time.Second)
		}

		recordings = append(recordings, rf)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return recordings, nil
}

// ParseRecordingName parses names like "Show Title - S04E02 - Episode Title.ts".
// Names without numbering yield stub numbering.
func ParseRecordingName(name string) RecordingFile {
	rf, _ := parseName(name)
	return rf
}

// parseName also reports whether name followed the "Series - ..." layout
func parseName(name string) (RecordingFile, bool) {
	base := strings.TrimSuffix(name, path.Ext(name))
	base = strings.TrimSpace(base)

	rf := RecordingFile{
		Name:          name,
		SeasonNumber:  storage.StubNumber,
		EpisodeNumber: storage.StubNumber,
	}

	if m := numberedRegex.FindStringSubmatch(base); m != nil {
		season, serr := strconv.ParseInt(m[2], 10, 32)
		episode, eerr := strconv.ParseInt(m[3], 10, 32)
		if serr == nil && eerr == nil {
			rf.SeriesTitle = strings.TrimSpace(m[1])
			rf.SeasonNumber = int32(season)
			rf.EpisodeNumber = int32(episode)
			rf.EpisodeTitle = strings.TrimSpace(m[4])
			return rf, true
		}
	}

	if m := titledRegex.FindStringSubmatch(base); m != nil {
		rf.SeriesTitle = strings.TrimSpace(m[1])
		rf.EpisodeTitle = strings.TrimSpace(m[2])
		return rf, true
	}

	rf.SeriesTitle = base
	return rf, false
}

func levelsOfNesting(p string) int {
	return strings.Count(p, "/")
}

func seriesFromDir(p string) string {
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	return path.Base(dir)
}

func isVideoFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range videoExtensions {
		if ext == e {
			return true
		}
	}

	return false
}
