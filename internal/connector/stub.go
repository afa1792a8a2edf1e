package connector

import (
	"context"
	"fmt"

	"github.com/jimezsa/jobradar/internal/models"
)

// official is a source whose public API requires an OAuth client that is not
// integrated yet.
type official struct {
	name   string
	apiKey string
}

func NewFranceTravail(apiKey string) Connector {
	return &official{name: SourceFranceTravail, apiKey: apiKey}
}

func NewEURES(apiKey string) Connector {
	return &official{name: SourceEURES, apiKey: apiKey}
}

func (o *official) Name() string {
	return o.name
}

func (o *official) Fetch(_ context.Context, _ Query) ([]models.Posting, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("%s: %w (no api key)", o.name, ErrNotImplemented)
	}
	return nil, fmt.Errorf("%s: %w", o.name, ErrNotImplemented)
}
