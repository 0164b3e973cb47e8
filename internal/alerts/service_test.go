package alerts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingebuddy/bingebuddy/internal/database/queries"
	"github.com/bingebuddy/bingebuddy/internal/library/tv"
	"github.com/bingebuddy/bingebuddy/internal/metadata/tmdb"
	"github.com/bingebuddy/bingebuddy/internal/notification"
	"github.com/bingebuddy/bingebuddy/internal/notification/types"
	"github.com/bingebuddy/bingebuddy/internal/testutil"
	"github.com/bingebuddy/bingebuddy/internal/users"
)

type recordingSender struct {
	sent []types.Mail
	fail map[string]error
}

func (r *recordingSender) Send(_ context.Context, mail types.Mail) error {
	r.sent = append(r.sent, mail)
	if err, ok := r.fail[mail.To[0]]; ok {
		return err
	}
	return nil
}

// stubCatalog serves shows with no seasons and a mutable next air date.
type stubCatalog struct {
	next map[int]string
}

func (c *stubCatalog) GetShow(_ context.Context, tmdbID int) (*tmdb.ShowResult, error) {
	return &tmdb.ShowResult{TmdbID: tmdbID, Name: "Show A", Status: "Returning Series", NextAirDate: c.next[tmdbID]}, nil
}

func (c *stubCatalog) GetSeason(context.Context, int, int) (*tmdb.SeasonResult, error) {
	return nil, errors.New("no seasons")
}

type harness struct {
	tdb     *testutil.TestDB
	tv      *tv.Service
	users   *users.Service
	sender  *recordingSender
	alerts  *Service
	catalog *stubCatalog
}

var sundayAfternoon = time.Date(2024, 3, 3, 21, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	userSvc := users.NewService(tdb.Conn, tdb.Logger)
	sender := &recordingSender{fail: map[string]error{}}
	dispatcher := notification.NewDispatcher(sender, tdb.Logger)
	mst := time.FixedZone("MST", -7*3600)

	return &harness{
		tdb:    tdb,
		tv:     tv.NewService(tdb.Conn, tdb.Logger),
		users:  userSvc,
		sender: sender,
		alerts: NewService(tdb.Conn, userSvc, dispatcher, Options{
			Window:   Window{Location: mst, Weekday: time.Sunday, Start: 13 * time.Hour, End: 24*time.Hour - time.Second},
			Defaults: users.Defaults{Email: "ops@example.com"},
		}, tdb.Logger),
		catalog: &stubCatalog{next: map[int]string{}},
	}
}

func (h *harness) sync(t *testing.T, tmdbID int, next string) *tv.SyncResult {
	t.Helper()
	h.catalog.next[tmdbID] = next
	res, err := h.tv.SyncShow(context.Background(), h.catalog, tmdbID)
	require.NoError(t, err)
	return res
}

func (h *harness) addUser(t *testing.T, email string, showIDs ...int64) *users.User {
	t.Helper()
	u, err := h.users.Create(context.Background(), users.CreateInput{Email: email, EmailEnabled: true})
	require.NoError(t, err)
	for _, id := range showIDs {
		require.NoError(t, h.users.Track(context.Background(), u.ID, id))
	}
	return u
}

func (h *harness) setWatermark(t *testing.T, showID int64, date string) {
	t.Helper()
	require.NoError(t, h.tdb.Queries.SetAlertedNextAirDate(context.Background(), queries.SetAlertedNextAirDateParams{
		AlertedNextAirDate: date,
		ID:                 showID,
	}))
}

func (h *harness) watermark(t *testing.T, showID int64) string {
	t.Helper()
	show, err := h.tv.GetShow(context.Background(), showID)
	require.NoError(t, err)
	return tv.FormatDate(show.AlertedNextAirDate)
}

func TestNeedsAlert(t *testing.T) {
	d1 := tv.ParseDate("2024-03-01")
	d2 := tv.ParseDate("2024-03-08")

	assert.True(t, NeedsAlert(&tv.Show{NextAirDate: d1}))
	assert.True(t, NeedsAlert(&tv.Show{NextAirDate: d2, AlertedNextAirDate: d1}))
	assert.False(t, NeedsAlert(&tv.Show{NextAirDate: d1, AlertedNextAirDate: d1}))
	assert.False(t, NeedsAlert(&tv.Show{AlertedNextAirDate: d1}))
	assert.False(t, NeedsAlert(nil))
}

func TestSendAlerts_DateChangeScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	showID := h.sync(t, 100, "2024-03-01").ShowID
	h.setWatermark(t, showID, "2024-03-01")
	h.addUser(t, "me@example.com", showID)

	res := h.sync(t, 100, "2024-03-08")
	assert.Equal(t, tv.TransitionChanged, res.Transition)
	assert.Equal(t, "2024-03-01", h.watermark(t, showID), "sync must not move the watermark")

	result, err := h.alerts.SendAlerts(ctx, sundayAfternoon)
	require.NoError(t, err)

	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, []string{"me@example.com"}, h.sender.sent[0].To)
	assert.Equal(t, "New next episode date for Show A", h.sender.sent[0].Subject)
	assert.Contains(t, h.sender.sent[0].Text, "2024-03-08 (last announced 2024-03-01)")
	assert.Equal(t, 1, result.WatermarksAdvanced)
	assert.Equal(t, "2024-03-08", h.watermark(t, showID))

	show, err := h.tv.GetShow(ctx, showID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08", tv.FormatDate(show.NextAirDate))
}

func TestSendAlerts_OneAttemptPerDistinctDate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	showID := h.sync(t, 100, "2024-03-01").ShowID
	h.setWatermark(t, showID, "2024-03-01")
	h.addUser(t, "me@example.com", showID)

	for _, next := range []string{"2024-03-08", "2024-03-08", "2024-03-15"} {
		h.sync(t, 100, next)
		_, err := h.alerts.SendAlerts(ctx, sundayAfternoon)
		require.NoError(t, err)
		// A second run inside the same window sends nothing new.
		_, err = h.alerts.SendAlerts(ctx, sundayAfternoon)
		require.NoError(t, err)
	}

	assert.Len(t, h.sender.sent, 2)
	assert.Equal(t, "2024-03-15", h.watermark(t, showID))
}

func TestSendAlerts_ClearedDateNeverAlerts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	showID := h.sync(t, 100, "2024-03-01").ShowID
	h.setWatermark(t, showID, "2024-03-01")
	h.addUser(t, "me@example.com", showID)

	res := h.sync(t, 100, "")
	assert.Equal(t, tv.TransitionCleared, res.Transition)

	result, err := h.alerts.SendAlerts(ctx, sundayAfternoon)
	require.NoError(t, err)
	assert.Empty(t, h.sender.sent)
	assert.Zero(t, result.PendingShows)
	assert.Equal(t, "2024-03-01", h.watermark(t, showID))

	// A later re-announcement of a concrete date alerts, relative to the
	// date users were last told about rather than the cleared value.
	h.sync(t, 100, "2024-03-15")
	_, err = h.alerts.SendAlerts(ctx, sundayAfternoon)
	require.NoError(t, err)
	require.Len(t, h.sender.sent, 1)
	assert.Contains(t, h.sender.sent[0].Text, "- Show A: 2024-03-15 (last announced 2024-03-01)")
	assert.Contains(t, h.sender.sent[0].HTML, "2024-03-15 (last announced 2024-03-01)")
}

func TestSendAlerts_UserFailureIsolated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	showID := h.sync(t, 100, "2024-03-01").ShowID
	h.setWatermark(t, showID, "2024-03-01")
	broken := h.addUser(t, "broken@example.com", showID)
	h.addUser(t, "me@example.com", showID)

	// An unreadable preference row makes this user's alert fail.
	_, err := h.tdb.Conn.ExecContext(ctx,
		`INSERT INTO alert_config (user_id, email_enabled) VALUES (?, 'garbage')`, broken.ID)
	require.NoError(t, err)

	h.sync(t, 100, "2024-03-08")
	result, err := h.alerts.SendAlerts(ctx, sundayAfternoon)
	require.NoError(t, err)

	assert.Equal(t, 2, result.UsersConsidered)
	assert.Equal(t, 1, result.UsersFailed)
	assert.Equal(t, 1, result.UsersNotified)
	assert.Equal(t, 1, result.ChannelsSent)
	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, []string{"me@example.com"}, h.sender.sent[0].To)
	assert.Equal(t, "2024-03-08", h.watermark(t, showID))
}

func TestSendAlerts_AdvancesOnFailedAttempt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	showID := h.sync(t, 100, "2024-03-08").ShowID
	h.addUser(t, "broken@example.com", showID)
	h.sender.fail["broken@example.com"] = errors.New("smtp down")

	result, err := h.alerts.SendAlerts(ctx, sundayAfternoon)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChannelsFailed)
	assert.Equal(t, 1, result.UsersNotified)
	assert.Equal(t, "2024-03-08", h.watermark(t, showID))
}

func TestSendAlerts_UntrackedOrUnreachableKeepsWatermark(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	showID := h.sync(t, 100, "2024-03-08").ShowID
	u := h.addUser(t, "quiet@example.com", showID)
	_, err := h.users.UpdateProfile(ctx, u.ID, users.ProfileInput{})
	require.NoError(t, err)
	h.addUser(t, "other@example.com")

	result, err := h.alerts.SendAlerts(ctx, sundayAfternoon)
	require.NoError(t, err)
	assert.Empty(t, h.sender.sent)
	assert.Equal(t, 2, result.UsersSkipped)
	assert.Zero(t, result.WatermarksAdvanced)
	assert.Empty(t, h.watermark(t, showID))
}

func TestSendAlerts_UpcomingEpisodes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	showID := h.sync(t, 100, "").ShowID
	u := h.addUser(t, "me@example.com", showID)

	episode := func(n int64, air string) int64 {
		id, err := h.tdb.Queries.UpsertEpisode(ctx, queries.UpsertEpisodeParams{
			ShowID:        showID,
			SeasonNumber:  1,
			EpisodeNumber: n,
			Name:          sql.NullString{String: "Ep", Valid: true},
			AirDate:       sql.NullString{String: air, Valid: true},
		})
		require.NoError(t, err)
		return id
	}
	// Local today is 2024-03-03.
	episode(1, "2024-03-02")
	watched := episode(2, "2024-03-03")
	episode(3, "2024-03-10")
	episode(4, "2024-03-11")

	_, err := h.tdb.Queries.CreateWatch(ctx, queries.CreateWatchParams{UserID: u.ID, EpisodeID: watched, WatchedAt: sundayAfternoon})
	require.NoError(t, err)

	result, err := h.alerts.SendAlerts(ctx, sundayAfternoon)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UsersNotified)

	require.Len(t, h.sender.sent, 1)
	mail := h.sender.sent[0]
	assert.Equal(t, "Your BingeBuddy weekly lineup", mail.Subject)
	assert.Contains(t, mail.Text, "S1E3")
	assert.NotContains(t, mail.Text, "S1E1")
	assert.NotContains(t, mail.Text, "S1E2")
	assert.NotContains(t, mail.Text, "S1E4")
}

func TestSendAlerts_SMSOnlyUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	showID := h.sync(t, 100, "2024-03-08").ShowID
	u := h.addUser(t, "me@example.com", showID)
	_, err := h.users.SaveAlertConfig(ctx, users.AlertConfig{
		UserID:             u.ID,
		SMSTo:              "555-123-4567",
		Carrier:            "verizon",
		SMSViaEmailEnabled: true,
	})
	require.NoError(t, err)

	_, err = h.alerts.SendAlerts(ctx, sundayAfternoon)
	require.NoError(t, err)

	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, []string{"5551234567@vtext.com"}, h.sender.sent[0].To)
	assert.Equal(t, "Show A next ep 2024-03-08", h.sender.sent[0].Text)
}
