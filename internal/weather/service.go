package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var (
	// ErrEmptyLocation is returned when the location query is empty or whitespace.
	ErrEmptyLocation = errors.New("location is required")
	// ErrProviderFailure wraps every error raised while talking to the provider.
	ErrProviderFailure = errors.New("weather provider request failed")
	// ErrNoProvider is returned when the service was built without a provider.
	ErrNoProvider = errors.New("no weather provider configured")
)

// Service resolves user searches into Readings through a single provider.
type Service struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewService creates a new Service. A zero timeout leaves the caller's context as is.
func NewService(provider Provider, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// ProviderName returns the configured provider's name, or "" when none is set.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Current fetches the current weather for query. The query is trimmed first;
// an empty query fails with ErrEmptyLocation before any network call. Provider
// errors are wrapped in ErrProviderFailure and never yield a partial Reading.
func (s *Service) Current(ctx context.Context, query string) (Reading, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Reading{}, ErrEmptyLocation
	}
	if s.provider == nil {
		return Reading{}, ErrNoProvider
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Debug("fetching current weather", "provider", s.provider.Name(), "query", query)

	r, err := s.provider.Fetch(ctx, query)
	if err != nil {
		s.logger.Warn("provider fetch failed", "provider", s.provider.Name(), "query", query, "err", err)
		return Reading{}, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	// A reading must satisfy the same invariants NewReading enforces.
	if _, err := NewReading(r.Temperature, r.Unit, r.Condition, r.LocationName); err != nil {
		s.logger.Warn("provider returned an invalid reading", "provider", s.provider.Name(), "query", query)
		return Reading{}, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	return r, nil
}
