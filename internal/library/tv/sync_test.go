package tv

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/bingebuddy/bingebuddy/internal/database/queries"
	"github.com/bingebuddy/bingebuddy/internal/metadata/tmdb"
	"github.com/bingebuddy/bingebuddy/internal/testutil"
)

type fakeCatalog struct {
	shows       map[int]*tmdb.ShowResult
	seasons     map[[2]int]*tmdb.SeasonResult
	failSeasons map[[2]int]bool
	seasonCalls int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		shows:       make(map[int]*tmdb.ShowResult),
		seasons:     make(map[[2]int]*tmdb.SeasonResult),
		failSeasons: make(map[[2]int]bool),
	}
}

func (f *fakeCatalog) GetShow(_ context.Context, tmdbID int) (*tmdb.ShowResult, error) {
	show, ok := f.shows[tmdbID]
	if !ok {
		return nil, tmdb.ErrShowNotFound
	}
	copied := *show
	return &copied, nil
}

func (f *fakeCatalog) GetSeason(_ context.Context, tmdbID, seasonNumber int) (*tmdb.SeasonResult, error) {
	f.seasonCalls++
	key := [2]int{tmdbID, seasonNumber}
	if f.failSeasons[key] {
		return nil, tmdb.ErrRateLimited
	}
	season, ok := f.seasons[key]
	if !ok {
		return nil, tmdb.ErrShowNotFound
	}
	return season, nil
}

type providerCatalog struct {
	*fakeCatalog
	providers []string
	err       error
}

func (p *providerCatalog) GetWatchProviders(context.Context, int) ([]string, error) {
	return p.providers, p.err
}

// addShow registers a show with two regular seasons and a specials season.
func (f *fakeCatalog) addShow(tmdbID int, name, nextAirDate string) {
	f.shows[tmdbID] = &tmdb.ShowResult{
		TmdbID:        tmdbID,
		Name:          name,
		Status:        "Returning Series",
		NextAirDate:   nextAirDate,
		SeasonNumbers: []int{0, 1, 2},
	}
	f.seasons[[2]int{tmdbID, 0}] = &tmdb.SeasonResult{
		SeasonNumber: 0,
		Name:         "Specials",
		Episodes: []tmdb.EpisodeResult{
			{TmdbID: tmdbID*1000 + 1, SeasonNumber: 0, EpisodeNumber: 1, Name: "Special", AirDate: "2019-12-01"},
		},
	}
	f.seasons[[2]int{tmdbID, 1}] = &tmdb.SeasonResult{
		SeasonNumber: 1,
		Name:         "Season 1",
		AirDate:      "2020-01-01",
		Episodes: []tmdb.EpisodeResult{
			{TmdbID: tmdbID*1000 + 11, SeasonNumber: 1, EpisodeNumber: 1, Name: "Pilot", AirDate: "2020-01-01", Runtime: testutil.Ptr(45)},
			{TmdbID: tmdbID*1000 + 12, SeasonNumber: 1, EpisodeNumber: 2, Name: "Second", AirDate: "2020-01-08"},
		},
	}
	f.seasons[[2]int{tmdbID, 2}] = &tmdb.SeasonResult{
		SeasonNumber: 2,
		Name:         "Season 2",
		Episodes: []tmdb.EpisodeResult{
			{TmdbID: tmdbID*1000 + 21, SeasonNumber: 2, EpisodeNumber: 1, Name: "Return", AirDate: ""},
		},
	}
}

func countRows(t *testing.T, tdb *testutil.TestDB, table string) int {
	t.Helper()
	var n int
	if err := tdb.Conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSyncShow_Idempotent(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	catalog := newFakeCatalog()
	catalog.addShow(100, "Show A", "2024-06-02")

	first, err := service.SyncShow(ctx, catalog, 100)
	if err != nil {
		t.Fatalf("first SyncShow() error = %v", err)
	}
	episodesBefore, err := service.ListEpisodes(ctx, first.ShowID)
	if err != nil {
		t.Fatalf("ListEpisodes() error = %v", err)
	}

	second, err := service.SyncShow(ctx, catalog, 100)
	if err != nil {
		t.Fatalf("second SyncShow() error = %v", err)
	}

	if second.ShowID != first.ShowID {
		t.Errorf("re-sync ShowID = %d, want %d", second.ShowID, first.ShowID)
	}
	if got := countRows(t, tdb, "shows"); got != 1 {
		t.Errorf("shows = %d, want 1", got)
	}
	if got := countRows(t, tdb, "seasons"); got != 3 {
		t.Errorf("seasons = %d, want 3", got)
	}
	if got := countRows(t, tdb, "episodes"); got != 4 {
		t.Errorf("episodes = %d, want 4", got)
	}

	episodesAfter, err := service.ListEpisodes(ctx, first.ShowID)
	if err != nil {
		t.Fatalf("ListEpisodes() error = %v", err)
	}
	for i := range episodesBefore {
		if episodesBefore[i].ID != episodesAfter[i].ID {
			t.Errorf("episode %d id changed from %d to %d", i, episodesBefore[i].ID, episodesAfter[i].ID)
		}
	}

	if first.Transition != TransitionChanged {
		t.Errorf("first sync transition = %v, want changed", first.Transition)
	}
	if second.Transition != TransitionUnchanged {
		t.Errorf("second sync transition = %v, want unchanged", second.Transition)
	}
	if second.SeasonsSynced != 3 || second.EpisodesSynced != 4 {
		t.Errorf("second sync = %d seasons, %d episodes", second.SeasonsSynced, second.EpisodesSynced)
	}
}

func TestSyncShow_UpdatesEpisodeInPlace(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	catalog := newFakeCatalog()
	catalog.addShow(100, "Show A", "")

	result, err := service.SyncShow(ctx, catalog, 100)
	if err != nil {
		t.Fatalf("SyncShow() error = %v", err)
	}
	before, err := service.GetEpisodeByNumber(ctx, result.ShowID, 2, 1)
	if err != nil {
		t.Fatalf("GetEpisodeByNumber() error = %v", err)
	}
	if before.AirDate != nil {
		t.Errorf("empty air date stored as %v, want NULL", before.AirDate)
	}

	season := catalog.seasons[[2]int{100, 2}]
	season.Episodes[0].Name = "Return (Renamed)"
	season.Episodes[0].AirDate = "2024-06-02"
	// Catalog stops reporting the episode id; the stored one survives.
	season.Episodes[0].TmdbID = 0

	if _, err := service.SyncShow(ctx, catalog, 100); err != nil {
		t.Fatalf("SyncShow() error = %v", err)
	}

	after, err := service.GetEpisodeByNumber(ctx, result.ShowID, 2, 1)
	if err != nil {
		t.Fatalf("GetEpisodeByNumber() error = %v", err)
	}
	if after.ID != before.ID {
		t.Errorf("episode id changed from %d to %d", before.ID, after.ID)
	}
	if after.Name != "Return (Renamed)" {
		t.Errorf("Name = %q", after.Name)
	}
	if FormatDate(after.AirDate) != "2024-06-02" {
		t.Errorf("AirDate = %v", after.AirDate)
	}
	if after.TmdbEpisodeID == nil || *after.TmdbEpisodeID != 100021 {
		t.Errorf("TmdbEpisodeID = %v, want 100021", after.TmdbEpisodeID)
	}
}

func TestSyncShow_SeasonFetchFailureSkipsSeason(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	catalog := newFakeCatalog()
	catalog.addShow(100, "Show A", "2024-06-02")
	catalog.failSeasons[[2]int{100, 1}] = true

	result, err := service.SyncShow(ctx, catalog, 100)
	if err != nil {
		t.Fatalf("SyncShow() error = %v", err)
	}
	if result.SeasonsFailed != 1 || result.SeasonsSynced != 2 {
		t.Errorf("seasons synced/failed = %d/%d, want 2/1", result.SeasonsSynced, result.SeasonsFailed)
	}

	seasons, err := service.ListSeasons(ctx, result.ShowID)
	if err != nil {
		t.Fatalf("ListSeasons() error = %v", err)
	}
	for _, s := range seasons {
		if s.SeasonNumber == 1 {
			t.Error("season 1 stored despite fetch failure")
		}
	}
}

func TestSyncShow_ShowFetchFailureLeavesStoreUntouched(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)

	_, err := service.SyncShow(context.Background(), newFakeCatalog(), 404)
	if !errors.Is(err, tmdb.ErrShowNotFound) {
		t.Fatalf("SyncShow() error = %v, want ErrShowNotFound", err)
	}
	if got := countRows(t, tdb, "shows"); got != 0 {
		t.Errorf("shows = %d, want 0", got)
	}
}

func TestSyncShow_NextAirDateTransitions(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	catalog := newFakeCatalog()
	catalog.addShow(100, "Show A", "2024-06-02")

	result, err := service.SyncShow(ctx, catalog, 100)
	if err != nil {
		t.Fatalf("SyncShow() error = %v", err)
	}

	err = tdb.Queries.SetAlertedNextAirDate(ctx, queries.SetAlertedNextAirDateParams{
		ID:                 result.ShowID,
		AlertedNextAirDate: "2024-06-02",
	})
	if err != nil {
		t.Fatalf("SetAlertedNextAirDate() error = %v", err)
	}

	steps := []struct {
		next string
		want Transition
	}{
		{"2024-06-09", TransitionChanged},
		{"2024-06-09", TransitionUnchanged},
		{"", TransitionCleared},
		{"", TransitionUnchanged},
	}
	for _, step := range steps {
		catalog.shows[100].NextAirDate = step.next
		result, err := service.SyncShow(ctx, catalog, 100)
		if err != nil {
			t.Fatalf("SyncShow(%q) error = %v", step.next, err)
		}
		if result.Transition != step.want {
			t.Errorf("SyncShow(%q) transition = %v, want %v", step.next, result.Transition, step.want)
		}
	}

	show, err := service.GetShowByTmdbID(ctx, 100)
	if err != nil {
		t.Fatalf("GetShowByTmdbID() error = %v", err)
	}
	if show.NextAirDate != nil {
		t.Errorf("NextAirDate = %v, want cleared", show.NextAirDate)
	}
	if FormatDate(show.AlertedNextAirDate) != "2024-06-02" {
		t.Errorf("AlertedNextAirDate = %v, sync must not touch the watermark", show.AlertedNextAirDate)
	}
}

func TestSyncShow_WatchProviders(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	base := newFakeCatalog()
	base.addShow(100, "Show A", "")
	catalog := &providerCatalog{fakeCatalog: base, providers: []string{"Hulu", "Netflix"}}

	if _, err := service.SyncShow(ctx, catalog, 100); err != nil {
		t.Fatalf("SyncShow() error = %v", err)
	}

	catalog.err = tmdb.ErrRateLimited
	if _, err := service.SyncShow(ctx, catalog, 100); err != nil {
		t.Fatalf("SyncShow() error = %v", err)
	}

	show, err := service.GetShowByTmdbID(ctx, 100)
	if err != nil {
		t.Fatalf("GetShowByTmdbID() error = %v", err)
	}
	if len(show.WatchProviders) != 2 || show.WatchProviders[0] != "Hulu" {
		t.Errorf("WatchProviders = %v, want previous value kept", show.WatchProviders)
	}
}

func TestSyncShow_StorageFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM shows WHERE tmdb_id = \?`).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO shows`).
		WillReturnError(errors.New("disk I/O error"))

	catalog := newFakeCatalog()
	catalog.addShow(100, "Show A", "2024-06-02")

	service := NewService(db, testutil.NopLogger())
	if _, err := service.SyncShow(context.Background(), catalog, 100); err == nil {
		t.Fatal("SyncShow() expected error on storage failure")
	}
	if catalog.seasonCalls != 0 {
		t.Errorf("fetched %d seasons after show write failed", catalog.seasonCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNextUnwatched(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	catalog := newFakeCatalog()
	catalog.addShow(100, "Show A", "")
	result, err := service.SyncShow(ctx, catalog, 100)
	if err != nil {
		t.Fatalf("SyncShow() error = %v", err)
	}

	userID, err := tdb.Queries.CreateUser(ctx, queries.CreateUserParams{Email: "a@example.com", EmailEnabled: true})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	next, err := service.NextUnwatched(ctx, userID, result.ShowID)
	if err != nil {
		t.Fatalf("NextUnwatched() error = %v", err)
	}
	if next.SeasonNumber != 1 || next.EpisodeNumber != 1 {
		t.Errorf("NextUnwatched() = S%dE%d, want S1E1 (specials skipped)", next.SeasonNumber, next.EpisodeNumber)
	}

	episodes, err := service.ListEpisodes(ctx, result.ShowID)
	if err != nil {
		t.Fatalf("ListEpisodes() error = %v", err)
	}
	for _, ep := range episodes {
		if ep.SeasonNumber == 0 {
			continue
		}
		_, err := tdb.Conn.Exec(
			"INSERT INTO watches (user_id, episode_id, watched_at) VALUES (?, ?, '2024-01-01 00:00:00')",
			userID, ep.ID)
		if err != nil {
			t.Fatalf("insert watch: %v", err)
		}
	}

	if _, err := service.NextUnwatched(ctx, userID, result.ShowID); !errors.Is(err, ErrAllWatched) {
		t.Errorf("NextUnwatched() error = %v, want ErrAllWatched", err)
	}
}
