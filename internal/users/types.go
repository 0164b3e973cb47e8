package users

import "time"

// User is a person who tracks shows and receives alerts.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Carrier      string    `json:"carrier,omitempty"`
	EmailEnabled bool      `json:"emailEnabled"`
	SMSEnabled   bool      `json:"smsEnabled"`
	HasPassword  bool      `json:"hasPassword"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateInput contains fields for creating a user. Password is optional.
type CreateInput struct {
	Email        string
	Password     string
	Phone        string
	Carrier      string
	EmailEnabled bool
	SMSEnabled   bool
}

// ProfileInput replaces a user's contact preferences.
type ProfileInput struct {
	Phone        string
	Carrier      string
	EmailEnabled bool
	SMSEnabled   bool
}

// AlertConfig is a per-user override of where and how alerts are delivered.
// Empty address fields fall back to the user's profile.
type AlertConfig struct {
	UserID             int64     `json:"userId"`
	EmailTo            string    `json:"emailTo,omitempty"`
	SMSTo              string    `json:"smsTo,omitempty"`
	Carrier            string    `json:"carrier,omitempty"`
	EmailEnabled       bool      `json:"emailEnabled"`
	SMSViaEmailEnabled bool      `json:"smsViaEmailEnabled"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Defaults are the deployment-wide fallback recipients.
type Defaults struct {
	Email   string
	SMSTo   string
	Carrier string
}
