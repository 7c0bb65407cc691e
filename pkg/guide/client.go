package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/oapi-codegen/nullable"
	"go.uber.org/zap"
)

const (
	apiKeyHeader  = "X-Api-Key"
	airDateFormat = time.DateOnly
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches episode guides over HTTP
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    HTTPClient
}

// New creates a guide client for the service at scheme://host
func New(scheme, host, apiKey string, client HTTPClient) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("guide host is required")
	}
	if scheme == "" {
		scheme = "https"
	}

	return &Client{
		baseURL: &url.URL{Scheme: scheme, Host: host},
		apiKey:  apiKey,
		http:    client,
	}, nil
}

type episodesResponse struct {
	Episodes []episodePayload `json:"episodes"`
}

type episodePayload struct {
	ID            string                       `json:"id"`
	SeasonNumber  int32                        `json:"seasonNumber"`
	EpisodeNumber int32                        `json:"episodeNumber"`
	Title         nullable.Nullable[string]    `json:"title"`
	AirDate       nullable.Nullable[string]    `json:"airDate"`
	LastModified  nullable.Nullable[time.Time] `json:"lastModified"`
}

// FetchEpisodeGuide returns the full upstream episode list of a series
func (c *Client) FetchEpisodeGuide(ctx context.Context, seriesExternalID string) ([]Episode, error) {
	log := logger.FromCtx(ctx)

	u := c.baseURL.JoinPath("series", seriesExternalID, "episodes")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Debug("unexpected guide response", zap.Int("status", resp.StatusCode), zap.String("body", string(b)))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload episodesResponse
	err = json.NewDecoder(resp.Body).Decode(&payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode episode guide: %w", err)
	}

	episodes := make([]Episode, 0, len(payload.Episodes))
	for _, p := range payload.Episodes {
		episode, err := p.toEpisode()
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, episode)
	}

	log.Debug("fetched episode guide", zap.String("series", seriesExternalID), zap.Int("episodes", len(episodes)))
	return episodes, nil
}

func (p episodePayload) toEpisode() (Episode, error) {
	episode := Episode{
		ExternalID:    p.ID,
		SeasonNumber:  p.SeasonNumber,
		EpisodeNumber: p.EpisodeNumber,
	}

	if title, err := p.Title.Get(); err == nil {
		episode.Title = title
	}

	if raw, err := p.AirDate.Get(); err == nil && raw != "" {
		airDate, err := time.Parse(airDateFormat, raw)
		if err != nil {
			return Episode{}, fmt.Errorf("%w: episode %s air date %q", ErrInvalidGuide, p.ID, raw)
		}
		episode.AirDate = &airDate
	}

	if lastModified, err := p.LastModified.Get(); err == nil {
		lastModified = lastModified.UTC()
		episode.LastModified = &lastModified
	}

	return episode, nil
}
