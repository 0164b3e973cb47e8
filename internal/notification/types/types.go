// Package types contains shared type definitions for notification packages.
package types

import "context"

// Channel identifies a delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Mail is one outbound email. HTML is optional; when set the message is sent
// as multipart/alternative.
type Mail struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers mail. Implementations open and close their own connection
// per call.
type Sender interface {
	Send(ctx context.Context, mail Mail) error
}

// Message is a rendered notification in every form a channel may need.
type Message struct {
	Subject string
	Text    string
	HTML    string
	// SMS is the short body used for SMS-via-email.
	SMS string
}

// Recipients are the resolved delivery targets for one user.
type Recipients struct {
	Email        string
	EmailEnabled bool
	Phone        string
	Carrier      string
	SMSEnabled   bool
}
