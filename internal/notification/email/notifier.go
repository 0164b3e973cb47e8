package email

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bingebuddy/bingebuddy/internal/config"
	"github.com/bingebuddy/bingebuddy/internal/notification/types"
)

var (
	ErrNoRecipients    = errors.New("no recipients specified")
	ErrStartTLSMissing = errors.New("server does not support STARTTLS")
)

const dialTimeout = 20 * time.Second

// Notifier sends mail over SMTP, one session per message.
type Notifier struct {
	settings config.SMTPConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a new email notifier.
func New(settings config.SMTPConfig, logger zerolog.Logger) *Notifier {
	if settings.Port == 0 {
		settings.Port = 587
	}
	return &Notifier{
		settings: settings,
		logger:   logger.With().Str("notifier", "email").Logger(),
		now:      time.Now,
	}
}

// Test opens a session, authenticates and quits without sending.
func (n *Notifier) Test(ctx context.Context) error {
	client, err := n.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth := n.auth(); auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}
	return client.Quit()
}

// Send delivers mail to all of its recipients.
func (n *Notifier) Send(ctx context.Context, mail types.Mail) error {
	recipients := make([]string, 0, len(mail.To))
	for _, to := range mail.To {
		recipients = append(recipients, parseAddresses(to)...)
	}
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	from := n.settings.SenderAddress()
	msg, err := buildMessage(from, recipients, mail, n.now())
	if err != nil {
		return err
	}

	client, err := n.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := authenticateAndSetEnvelope(client, n.auth(), from, recipients); err != nil {
		return err
	}
	if err := writeMessageData(client, msg); err != nil {
		return err
	}

	n.logger.Debug().
		Strs("to", recipients).
		Str("subject", mail.Subject).
		Msg("Email sent")
	return nil
}

func (n *Notifier) auth() smtp.Auth {
	if n.settings.Username == "" || n.settings.Password == "" {
		return nil
	}
	return smtp.PlainAuth("", n.settings.Username, n.settings.Password, n.settings.Host)
}

func (n *Notifier) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName: n.settings.Host,
		MinVersion: tls.VersionTLS12,
	}
}

// dial connects with implicit TLS on port 465 and upgrades with STARTTLS
// elsewhere when use_tls is set.
func (n *Notifier) dial(ctx context.Context) (*smtp.Client, error) {
	addr := n.settings.Address()

	var conn net.Conn
	var err error
	if n.settings.UseTLS && n.settings.Port == 465 {
		dialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: dialTimeout}, Config: n.tlsConfig()}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		dialer := &net.Dialer{Timeout: dialTimeout}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.settings.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if n.settings.UseTLS && n.settings.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			client.Close()
			return nil, ErrStartTLSMissing
		}
		if err := client.StartTLS(n.tlsConfig()); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	return client, nil
}

func authenticateAndSetEnvelope(client *smtp.Client, auth smtp.Auth, from string, recipients []string) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}
	return nil
}

func writeMessageData(client *smtp.Client, message []byte) error {
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return client.Quit()
}

// buildMessage renders RFC 5322 headers and a quoted-printable body, using
// multipart/alternative when an HTML part is present.
func buildMessage(from string, to []string, mail types.Mail, now time.Time) ([]byte, error) {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", mail.Subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", now.Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if mail.HTML == "" {
		msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		msg.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		if err := writeQuotedPrintable(&msg, mail.Text); err != nil {
			return nil, err
		}
		return msg.Bytes(), nil
	}

	boundary, err := newBoundary()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	parts := []struct{ contentType, body string }{
		{"text/plain; charset=utf-8", mail.Text},
		{"text/html; charset=utf-8", mail.HTML},
	}
	for _, part := range parts {
		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		fmt.Fprintf(&msg, "Content-Type: %s\r\n", part.contentType)
		msg.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		if err := writeQuotedPrintable(&msg, part.body); err != nil {
			return nil, err
		}
		msg.WriteString("\r\n")
	}
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return msg.Bytes(), nil
}

func writeQuotedPrintable(buf *bytes.Buffer, body string) error {
	w := quotedprintable.NewWriter(buf)
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("failed to encode body: %w", err)
	}
	return w.Close()
}

func newBoundary() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate boundary: %w", err)
	}
	return "bb-" + hex.EncodeToString(b), nil
}

func parseAddresses(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	addrs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}
