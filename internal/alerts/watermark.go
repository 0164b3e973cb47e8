package alerts

import (
	"context"
	"fmt"

	"github.com/bingebuddy/bingebuddy/internal/database/queries"
	"github.com/bingebuddy/bingebuddy/internal/library/tv"
)

// NeedsAlert reports whether the show's next air date has not been announced
// yet. A show without a next air date never needs an alert.
func NeedsAlert(show *tv.Show) bool {
	if show == nil || show.NextAirDate == nil {
		return false
	}
	return !tv.SameDate(show.NextAirDate, show.AlertedNextAirDate)
}

// pendingShows returns shows whose next air date still needs announcing.
func (s *Service) pendingShows(ctx context.Context) ([]*tv.Show, error) {
	rows, err := s.queries.ListShowsPendingAlert(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending shows: %w", err)
	}
	shows := make([]*tv.Show, 0, len(rows))
	for _, row := range rows {
		show := tv.RowToShow(row)
		if NeedsAlert(show) {
			shows = append(shows, show)
		}
	}
	return shows, nil
}

// advance moves the watermark to the date that was just announced.
func (s *Service) advance(ctx context.Context, show *tv.Show) error {
	err := s.queries.SetAlertedNextAirDate(ctx, queries.SetAlertedNextAirDateParams{
		AlertedNextAirDate: tv.FormatDate(show.NextAirDate),
		ID:                 show.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to advance watermark for show %d: %w", show.ID, err)
	}
	return nil
}
