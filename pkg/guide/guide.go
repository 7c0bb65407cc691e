package guide

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected guide response status")
	ErrInvalidGuide     = errors.New("invalid episode guide")
)

// Provider supplies the upstream episode guide of a series
type Provider interface {
	FetchEpisodeGuide(ctx context.Context, seriesExternalID string) ([]Episode, error)
}

// Episode is one entry of an upstream episode guide
type Episode struct {
	ExternalID    string `validate:"required"`
	SeasonNumber  int32  `validate:"gte=0"`
	EpisodeNumber int32  `validate:"gte=0"`
	Title         string
	AirDate       *time.Time
	LastModified  *time.Time
}

type snapshot struct {
	Episodes []Episode `validate:"unique=ExternalID,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that every entry has an external id and non-negative numbering
// and that no external id appears twice
func Validate(episodes []Episode) error {
	err := validate.Struct(snapshot{Episodes: episodes})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s failed %q", ErrInvalidGuide, fe.Namespace(), fe.Tag())
	}

	return fmt.Errorf("%w: %w", ErrInvalidGuide, err)
}
