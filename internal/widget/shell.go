package widget

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/i474232898/weather-widget/internal/weather"
)

// User-facing messages.
const (
	MsgInvalidLocation = "Please enter a valid location."
	MsgCityNotFound    = "City not found. Please try again."
)

// ViewState is everything the widget shows. It is plain data so it can be stored
// per session and served as JSON.
type ViewState struct {
	Query   string           `json:"query"`
	Reading *weather.Reading `json:"reading,omitempty"`
	Error   string           `json:"error,omitempty"`
	Loading bool             `json:"loading"`
}

// Searcher fetches the current weather for a location query.
type Searcher interface {
	Current(ctx context.Context, query string) (weather.Reading, error)
}

// Shell drives ViewState transitions for a search.
type Shell struct {
	searcher Searcher
	logger   *slog.Logger

	// OnChange, when set, observes every intermediate state, including the
	// loading state emitted before the provider call.
	OnChange func(ViewState)
}

func NewShell(searcher Searcher, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{searcher: searcher, logger: logger}
}

// Search runs one user-initiated search starting from prev and returns the final
// state. An empty input fails validation without calling the provider; any
// failure clears the previous reading.
func (s *Shell) Search(ctx context.Context, prev ViewState, input string) ViewState {
	query := strings.TrimSpace(input)
	if query == "" {
		return s.emit(ViewState{Query: input, Error: MsgInvalidLocation})
	}

	loading := prev
	loading.Query = input
	loading.Error = ""
	loading.Loading = true
	s.emit(loading)

	r, err := s.searcher.Current(ctx, query)
	if err != nil {
		if errors.Is(err, weather.ErrEmptyLocation) {
			return s.emit(ViewState{Query: input, Error: MsgInvalidLocation})
		}
		s.logger.Info("weather search failed", "query", query, "err", err)
		return s.emit(ViewState{Query: input, Error: MsgCityNotFound})
	}

	return s.emit(ViewState{Query: input, Reading: &r})
}

func (s *Shell) emit(st ViewState) ViewState {
	if s.OnChange != nil {
		s.OnChange(st)
	}
	return st
}
