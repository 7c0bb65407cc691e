package storage

import (
	"context"
	"errors"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/catalogz/pkg/machine"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
)

var ErrNotFound = errors.New("not found in storage")

// StubNumber marks the season or episode number of a placeholder episode that
// has not been matched against an upstream guide yet.
const StubNumber int32 = -1

// IsStub reports whether the numbering belongs to a placeholder episode
func IsStub(season, number int32) bool {
	return season <= StubNumber || number <= StubNumber
}

type Storage interface {
	RunMigrations(ctx context.Context) error
	SeriesStorage
	EpisodeStorage
	EpisodeMirrorStorage
	RecordingStorage
}

type MatchStatus string

const (
	MatchStatusUnmatched MatchStatus = "unmatched"
	MatchStatusPending   MatchStatus = "pending_match"
	MatchStatusCompleted MatchStatus = "match_completed"
)

type Series struct {
	model.Series
}

// Status returns the typed match status, treating an empty value as unmatched
func (s Series) Status() MatchStatus {
	if s.MatchStatus == "" {
		return MatchStatusUnmatched
	}
	return MatchStatus(s.MatchStatus)
}

func (s Series) Machine() *machine.StateMachine[MatchStatus] {
	return machine.New(s.Status(),
		machine.From(MatchStatusUnmatched).To(MatchStatusPending, MatchStatusCompleted),
		machine.From(MatchStatusPending).To(MatchStatusUnmatched, MatchStatusCompleted),
		machine.From(MatchStatusCompleted).To(MatchStatusPending, MatchStatusCompleted),
	)
}

type SeriesStorage interface {
	CreateSeries(ctx context.Context, series model.Series) (int64, error)
	GetSeries(ctx context.Context, where sqlite.BoolExpression) (*Series, error)
	ListSeries(ctx context.Context, where ...sqlite.BoolExpression) ([]*Series, error)
	// UpdateSeries writes only the given columns of series
	UpdateSeries(ctx context.Context, series model.Series, columns sqlite.ColumnList) error
	UpdateSeriesMatchStatus(ctx context.Context, id int64, status MatchStatus, externalID *string) error
}

type EpisodeStorage interface {
	CreateEpisode(ctx context.Context, episode model.Episode) (int64, error)
	// CreateMirroredEpisode stores a mirror and its canonical episode in one transaction
	CreateMirroredEpisode(ctx context.Context, mirror model.EpisodeMirror, episode model.Episode) (episodeID int64, mirrorID int64, err error)
	GetEpisode(ctx context.Context, where sqlite.BoolExpression) (*model.Episode, error)
	ListEpisodes(ctx context.Context, where ...sqlite.BoolExpression) ([]*model.Episode, error)
	// UpdateEpisode writes only the given columns of episode
	UpdateEpisode(ctx context.Context, episode model.Episode, columns sqlite.ColumnList) error
	// UpdateMirroredEpisode writes the given columns of a mirror and its canonical episode in one transaction
	UpdateMirroredEpisode(ctx context.Context, mirror model.EpisodeMirror, mirrorColumns sqlite.ColumnList, episode model.Episode, episodeColumns sqlite.ColumnList) error
}

type EpisodeMirrorStorage interface {
	GetEpisodeMirror(ctx context.Context, where sqlite.BoolExpression) (*model.EpisodeMirror, error)
	ListEpisodeMirrors(ctx context.Context, where ...sqlite.BoolExpression) ([]*model.EpisodeMirror, error)
	// UpdateEpisodeMirror writes only the given columns of mirror
	UpdateEpisodeMirror(ctx context.Context, mirror model.EpisodeMirror, columns sqlite.ColumnList) error
}

type RecordingStorage interface {
	CreateRecording(ctx context.Context, recording model.Recording) (int64, error)
	// CreateLinkedRecording stores a recording and its edge to episode in one transaction,
	// creating the episode first when it has no id
	CreateLinkedRecording(ctx context.Context, recording model.Recording, episode model.Episode) (episodeID int64, recordingID int64, err error)
	GetRecording(ctx context.Context, where sqlite.BoolExpression) (*model.Recording, error)
	ListRecordings(ctx context.Context, where ...sqlite.BoolExpression) ([]*model.Recording, error)
	UpdateRecording(ctx context.Context, recording model.Recording, columns sqlite.ColumnList) error

	ListEpisodeRecordings(ctx context.Context, where ...sqlite.BoolExpression) ([]*model.EpisodeRecording, error)
	LinkRecording(ctx context.Context, episodeID, recordingID int64) error
	// RelinkRecording moves the edge of a recording from one episode to another
	RelinkRecording(ctx context.Context, recordingID, fromEpisodeID, toEpisodeID int64) error
}
