package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bingebuddy/bingebuddy/internal/database/queries"
	"github.com/bingebuddy/bingebuddy/internal/notification"
	"github.com/bingebuddy/bingebuddy/internal/notification/types"
)

// GetAlertConfig returns the user's alert override, or nil when none is saved.
func (s *Service) GetAlertConfig(ctx context.Context, userID int64) (*AlertConfig, error) {
	row, err := s.queries.GetAlertConfig(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alert config: %w", err)
	}
	return rowToAlertConfig(row), nil
}

// SaveAlertConfig creates or replaces the user's alert override.
func (s *Service) SaveAlertConfig(ctx context.Context, cfg AlertConfig) (*AlertConfig, error) {
	if _, err := s.Get(ctx, cfg.UserID); err != nil {
		return nil, err
	}
	if cfg.Carrier != "" && !notification.IsSupportedCarrier(cfg.Carrier) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCarrier, cfg.Carrier)
	}
	if cfg.EmailTo != "" {
		if _, err := normalizeEmail(cfg.EmailTo); err != nil {
			return nil, err
		}
	}

	err := s.queries.UpsertAlertConfig(ctx, queries.UpsertAlertConfigParams{
		UserID:             cfg.UserID,
		EmailTo:            nullString(cfg.EmailTo),
		SmsTo:              nullString(cfg.SMSTo),
		Carrier:            nullString(notification.NormalizeCarrier(cfg.Carrier)),
		EmailEnabled:       cfg.EmailEnabled,
		SmsViaEmailEnabled: cfg.SMSViaEmailEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save alert config: %w", err)
	}

	s.logger.Info().
		Int64("userId", cfg.UserID).
		Bool("email", cfg.EmailEnabled).
		Bool("sms", cfg.SMSViaEmailEnabled).
		Msg("Alert config saved")

	return s.GetAlertConfig(ctx, cfg.UserID)
}

// ResolvePreferences decides where a user's alerts go. A saved alert config
// wins over the profile, and blank addresses fall back to the profile and
// then to the deployment defaults.
func (s *Service) ResolvePreferences(ctx context.Context, userID int64, defaults Defaults) (types.Recipients, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return types.Recipients{}, err
	}
	cfg, err := s.GetAlertConfig(ctx, userID)
	if err != nil {
		return types.Recipients{}, err
	}
	return resolve(user, cfg, defaults), nil
}

func resolve(user *User, cfg *AlertConfig, defaults Defaults) types.Recipients {
	r := types.Recipients{
		Email:        firstNonEmpty(user.Email, defaults.Email),
		EmailEnabled: user.EmailEnabled,
		Phone:        firstNonEmpty(user.Phone, defaults.SMSTo),
		Carrier:      firstNonEmpty(user.Carrier, defaults.Carrier),
		SMSEnabled:   user.SMSEnabled,
	}
	if cfg == nil {
		return r
	}

	r.Email = firstNonEmpty(cfg.EmailTo, r.Email)
	r.EmailEnabled = cfg.EmailEnabled
	r.Phone = firstNonEmpty(cfg.SMSTo, r.Phone)
	r.Carrier = firstNonEmpty(cfg.Carrier, r.Carrier)
	r.SMSEnabled = cfg.SMSViaEmailEnabled
	return r
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func rowToAlertConfig(row *queries.AlertConfig) *AlertConfig {
	return &AlertConfig{
		UserID:             row.UserID,
		EmailTo:            row.EmailTo.String,
		SMSTo:              row.SmsTo.String,
		Carrier:            row.Carrier.String,
		EmailEnabled:       row.EmailEnabled,
		SMSViaEmailEnabled: row.SmsViaEmailEnabled,
		UpdatedAt:          row.UpdatedAt,
	}
}
