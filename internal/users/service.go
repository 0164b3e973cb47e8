package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bingebuddy/bingebuddy/internal/database/queries"
	"github.com/bingebuddy/bingebuddy/internal/notification"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrUnsupportedCarrier = errors.New("unsupported SMS carrier")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoPasswordSet      = errors.New("no password has been set")
	ErrNotTracking        = errors.New("user does not track this show")
)

// Service manages users, their tracked shows and alert preferences.
type Service struct {
	db      *sql.DB
	queries *queries.Queries
	logger  zerolog.Logger
}

// NewService creates a new users service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:      db,
		queries: queries.New(db),
		logger:  logger.With().Str("component", "users").Logger(),
	}
}

// Create adds a user. The password, when given, is stored as a bcrypt hash.
func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if input.Carrier != "" && !notification.IsSupportedCarrier(input.Carrier) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCarrier, input.Carrier)
	}

	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	var hash sql.NullString
	if input.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hash = sql.NullString{String: string(b), Valid: true}
	}

	id, err := s.queries.CreateUser(ctx, queries.CreateUserParams{
		Email:        email,
		Phone:        nullString(input.Phone),
		Carrier:      nullString(notification.NormalizeCarrier(input.Carrier)),
		EmailEnabled: input.EmailEnabled,
		SmsEnabled:   input.SMSEnabled,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Int64("userId", id).Str("email", email).Msg("User created")
	return s.Get(ctx, id)
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	row, err := s.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return rowToUser(row), nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	row, err := s.queries.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return rowToUser(row), nil
}

// List returns all users ordered by ID.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	rows, err := s.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*User, len(rows))
	for i, row := range rows {
		users[i] = rowToUser(row)
	}
	return users, nil
}

// VerifyPassword checks password against the user's stored hash.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	row, err := s.queries.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !row.PasswordHash.Valid || row.PasswordHash.String == "" {
		return ErrNoPasswordSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash.String), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// UpdateProfile replaces the user's phone, carrier and channel toggles.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (*User, error) {
	if input.Carrier != "" && !notification.IsSupportedCarrier(input.Carrier) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCarrier, input.Carrier)
	}

	n, err := s.queries.UpdateUserProfile(ctx, queries.UpdateUserProfileParams{
		Phone:        nullString(input.Phone),
		Carrier:      nullString(notification.NormalizeCarrier(input.Carrier)),
		EmailEnabled: input.EmailEnabled,
		SmsEnabled:   input.SMSEnabled,
		ID:           userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return nil, ErrUserNotFound
	}
	return s.Get(ctx, userID)
}

// Track links a show to a user. Tracking an already tracked show is a no-op.
func (s *Service) Track(ctx context.Context, userID, showID int64) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	if err := s.queries.TrackShow(ctx, queries.TrackShowParams{UserID: userID, ShowID: showID}); err != nil {
		return fmt.Errorf("failed to track show: %w", err)
	}
	return nil
}

// Untrack removes a user's link to a show.
func (s *Service) Untrack(ctx context.Context, userID, showID int64) error {
	n, err := s.queries.UntrackShow(ctx, queries.UntrackShowParams{UserID: userID, ShowID: showID})
	if err != nil {
		return fmt.Errorf("failed to untrack show: %w", err)
	}
	if n == 0 {
		return ErrNotTracking
	}
	return nil
}

// ListTrackedShowIDs returns the internal IDs of shows the user tracks.
func (s *Service) ListTrackedShowIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.queries.ListTrackedShowIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked shows: %w", err)
	}
	return ids, nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return strings.ToLower(addr.Address), nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func rowToUser(row *queries.User) *User {
	u := &User{
		ID:           row.ID,
		Email:        row.Email,
		EmailEnabled: row.EmailEnabled,
		SMSEnabled:   row.SmsEnabled,
		HasPassword:  row.PasswordHash.Valid && row.PasswordHash.String != "",
		CreatedAt:    row.CreatedAt,
	}
	if row.Phone.Valid {
		u.Phone = row.Phone.String
	}
	if row.Carrier.Valid {
		u.Carrier = row.Carrier.String
	}
	return u
}
