package queries

import (
	"context"
	"database/sql"
)

const alertConfigColumns = `id, user_id, email_to, sms_to, carrier, email_enabled, sms_via_email_enabled, updated_at`

func scanAlertConfig(row rowScanner) (*AlertConfig, error) {
	var i AlertConfig
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.EmailTo,
		&i.SmsTo,
		&i.Carrier,
		&i.EmailEnabled,
		&i.SmsViaEmailEnabled,
		&i.UpdatedAt,
	)
	return &i, err
}

const getAlertConfig = `SELECT ` + alertConfigColumns + ` FROM alert_config WHERE user_id = ?`

func (q *Queries) GetAlertConfig(ctx context.Context, userID int64) (*AlertConfig, error) {
	return scanAlertConfig(q.db.QueryRowContext(ctx, getAlertConfig, userID))
}

const upsertAlertConfig = `INSERT INTO alert_config (
    user_id, email_to, sms_to, carrier, email_enabled, sms_via_email_enabled
) VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    email_to = excluded.email_to,
    sms_to = excluded.sms_to,
    carrier = excluded.carrier,
    email_enabled = excluded.email_enabled,
    sms_via_email_enabled = excluded.sms_via_email_enabled,
    updated_at = CURRENT_TIMESTAMP`

type UpsertAlertConfigParams struct {
	UserID             int64
	EmailTo            sql.NullString
	SmsTo              sql.NullString
	Carrier            sql.NullString
	EmailEnabled       bool
	SmsViaEmailEnabled bool
}

func (q *Queries) UpsertAlertConfig(ctx context.Context, arg UpsertAlertConfigParams) error {
	_, err := q.db.ExecContext(ctx, upsertAlertConfig,
		arg.UserID,
		arg.EmailTo,
		arg.SmsTo,
		arg.Carrier,
		arg.EmailEnabled,
		arg.SmsViaEmailEnabled,
	)
	return err
}
