package manager

import "errors"

var (
	ErrSeriesNotMatched     = errors.New("series is not matched to an upstream guide")
	ErrSeriesRetired        = errors.New("series is retired")
	ErrUpstreamFetch        = errors.New("failed to fetch upstream episode guide")
	ErrMalformedGuide       = errors.New("malformed upstream episode guide")
	ErrAmbiguousGroup       = errors.New("duplicate group has no deterministic survivor")
	ErrUnsafeMerge          = errors.New("merge would move recordings linked to another series")
	ErrSameSeries           = errors.New("cannot merge a series into itself")
	ErrExternalIDInUse      = errors.New("external id is already used by another series")
	ErrLibraryNotConfigured = errors.New("recordings library is not configured")
)
