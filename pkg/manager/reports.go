package manager

// ReconcileReport counts the outcome of one series update pass
type ReconcileReport struct {
	SeriesID   int64 `json:"seriesId"`
	Added      int   `json:"added"`
	Updated    int   `json:"updated"`
	Renumbered int   `json:"renumbered"`
	Overrides  int   `json:"overrides"`
	Retired    int   `json:"retired"`
	Unchanged  int   `json:"unchanged"`
}

// GroupKey identifies a duplicate group
type GroupKey struct {
	SeriesID      int32 `json:"seriesId"`
	SeasonNumber  int32 `json:"season"`
	EpisodeNumber int32 `json:"episode"`
}

// DuplicateReport counts the outcome of a duplicate sweep
type DuplicateReport struct {
	RunID            string     `json:"runId"`
	Groups           int        `json:"groups"`
	Resolved         int        `json:"resolved"`
	Unresolved       int        `json:"unresolved"`
	Failed           int        `json:"failed"`
	Flagged          int        `json:"flagged"`
	Retired          int        `json:"retired"`
	Relinked         int        `json:"relinked"`
	Writes           int        `json:"writes"`
	UnresolvedGroups []GroupKey `json:"unresolvedGroups"`
}

// MergeReport counts the outcome of merging one series into another
type MergeReport struct {
	DuplicateID int64    `json:"duplicateId"`
	BaseID      int64    `json:"baseId"`
	Matched     int      `json:"matched"`
	Created     int      `json:"created"`
	Relinked    int      `json:"relinked"`
	Carried     []string `json:"carried"`
}

// ImportReport counts the outcome of a recordings import
type ImportReport struct {
	Found           int `json:"found"`
	Imported        int `json:"imported"`
	Skipped         int `json:"skipped"`
	CreatedSeries   int `json:"createdSeries"`
	CreatedEpisodes int `json:"createdEpisodes"`
}
