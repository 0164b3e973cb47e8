package notification

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bingebuddy/bingebuddy/internal/notification/types"
)

// Skip reasons recorded on channels that were not attempted.
const (
	SkipDisabled       = "disabled"
	SkipNoRecipient    = "no recipient"
	SkipUnknownCarrier = "unknown carrier or phone"
)

// ChannelResult records the outcome of one channel for one recipient set.
type ChannelResult struct {
	Channel    types.Channel
	Address    string
	Attempted  bool
	SkipReason string
	Err        error
}

// DispatchResult collects per-channel outcomes.
type DispatchResult struct {
	Channels []ChannelResult
}

// Attempted reports whether any channel tried to send.
func (r DispatchResult) Attempted() bool {
	for _, c := range r.Channels {
		if c.Attempted {
			return true
		}
	}
	return false
}

// Sent counts channels that delivered without error.
func (r DispatchResult) Sent() int {
	n := 0
	for _, c := range r.Channels {
		if c.Attempted && c.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts channels that were attempted and errored.
func (r DispatchResult) Failed() int {
	n := 0
	for _, c := range r.Channels {
		if c.Attempted && c.Err != nil {
			n++
		}
	}
	return n
}

// Dispatcher fans a message out to a user's email and SMS-via-email channels.
type Dispatcher struct {
	sender types.Sender
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher that delivers through sender.
func NewDispatcher(sender types.Sender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: logger.With().Str("component", "notification").Logger(),
	}
}

// Dispatch attempts every enabled channel independently. A failing channel is
// logged and recorded but never stops the other.
func (d *Dispatcher) Dispatch(ctx context.Context, msg types.Message, to types.Recipients) DispatchResult {
	return DispatchResult{
		Channels: []ChannelResult{
			d.sendEmail(ctx, msg, to),
			d.sendSMS(ctx, msg, to),
		},
	}
}

func (d *Dispatcher) sendEmail(ctx context.Context, msg types.Message, to types.Recipients) ChannelResult {
	result := ChannelResult{Channel: types.ChannelEmail, Address: strings.TrimSpace(to.Email)}
	switch {
	case !to.EmailEnabled:
		result.SkipReason = SkipDisabled
		return result
	case result.Address == "":
		result.SkipReason = SkipNoRecipient
		return result
	}

	result.Attempted = true
	result.Err = d.sender.Send(ctx, types.Mail{
		To:      []string{result.Address},
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
	d.logResult(result)
	return result
}

func (d *Dispatcher) sendSMS(ctx context.Context, msg types.Message, to types.Recipients) ChannelResult {
	result := ChannelResult{Channel: types.ChannelSMS}
	if !to.SMSEnabled {
		result.SkipReason = SkipDisabled
		return result
	}
	if strings.TrimSpace(to.Phone) == "" {
		result.SkipReason = SkipNoRecipient
		return result
	}
	addr, ok := SMSAddress(to.Phone, to.Carrier)
	if !ok {
		result.SkipReason = SkipUnknownCarrier
		d.logger.Warn().Str("carrier", to.Carrier).Msg("SMS skipped: unsupported carrier")
		return result
	}

	body := msg.SMS
	if body == "" {
		body = msg.Text
	}

	result.Address = addr
	result.Attempted = true
	result.Err = d.sender.Send(ctx, types.Mail{
		To:      []string{addr},
		Subject: "BingeBuddy",
		Text:    body,
	})
	d.logResult(result)
	return result
}

func (d *Dispatcher) logResult(r ChannelResult) {
	if r.Err != nil {
		d.logger.Warn().Err(r.Err).
			Str("channel", string(r.Channel)).
			Str("to", r.Address).
			Msg("Notification failed")
		return
	}
	d.logger.Info().
		Str("channel", string(r.Channel)).
		Str("to", r.Address).
		Msg("Notification sent")
}
