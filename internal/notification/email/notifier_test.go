package email

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bingebuddy/bingebuddy/internal/config"
	"github.com/bingebuddy/bingebuddy/internal/notification/types"
)

// fakeSMTP accepts a single session and records the envelope and data.
type fakeSMTP struct {
	ln     net.Listener
	done   chan struct{}
	authed bool
	from   string
	rcpts  []string
	data   string
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeSMTP{ln: ln, done: make(chan struct{})}
	t.Cleanup(func() { ln.Close() })
	go s.serve()
	return s
}

func (s *fakeSMTP) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTP) serve() {
	defer close(s.done)
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	write := func(line string) { fmt.Fprintf(conn, "%s\r\n", line) }
	write("220 fake ESMTP")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimRight(line, "\r\n")
		upper := strings.ToUpper(cmd)

		switch {
		case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
			write("250-fake")
			write("250 AUTH PLAIN")
		case strings.HasPrefix(upper, "AUTH"):
			s.authed = true
			write("235 authenticated")
		case strings.HasPrefix(upper, "MAIL FROM:"):
			s.from = between(cmd, "<", ">")
			write("250 ok")
		case strings.HasPrefix(upper, "RCPT TO:"):
			s.rcpts = append(s.rcpts, between(cmd, "<", ">"))
			write("250 ok")
		case upper == "DATA":
			write("354 end with .")
			var data strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				data.WriteString(l)
			}
			s.data = data.String()
			write("250 queued")
		case upper == "QUIT":
			write("221 bye")
			return
		default:
			write("250 ok")
		}
	}
}

func between(s, open, close string) string {
	i := strings.Index(s, open)
	j := strings.LastIndex(s, close)
	if i < 0 || j <= i {
		return ""
	}
	return s[i+1 : j]
}

func newTestNotifier(port int) *Notifier {
	n := New(config.SMTPConfig{
		Host:     "127.0.0.1",
		Port:     port,
		Username: "bot@example.com",
		Password: "secret",
	}, zerolog.Nop())
	n.now = func() time.Time { return time.Date(2024, 6, 2, 14, 0, 0, 0, time.UTC) }
	return n
}

func TestNotifier_Send(t *testing.T) {
	server := startFakeSMTP(t)
	n := newTestNotifier(server.port())

	err := n.Send(context.Background(), types.Mail{
		To:      []string{"me@example.com"},
		Subject: "Your BingeBuddy weekly lineup",
		Text:    "Upcoming episodes:\n- Show A S1E1",
		HTML:    "<ul><li>Show A S1E1</li></ul>",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case <-server.done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not finish session")
	}

	if !server.authed {
		t.Error("expected AUTH before sending")
	}
	if server.from != "bot@example.com" {
		t.Errorf("MAIL FROM = %q, want username fallback", server.from)
	}
	if len(server.rcpts) != 1 || server.rcpts[0] != "me@example.com" {
		t.Errorf("RCPT TO = %v", server.rcpts)
	}
	for _, want := range []string{
		"Subject: Your BingeBuddy weekly lineup",
		"multipart/alternative",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Type: text/html; charset=utf-8",
		"Show A S1E1",
	} {
		if !strings.Contains(server.data, want) {
			t.Errorf("message missing %q:\n%s", want, server.data)
		}
	}
}

func TestNotifier_SendConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	n := newTestNotifier(port)
	err = n.Send(context.Background(), types.Mail{To: []string{"me@example.com"}, Subject: "x", Text: "y"})
	if err == nil {
		t.Fatal("Send() expected error when server is unreachable")
	}
}

func TestNotifier_SendNoRecipients(t *testing.T) {
	n := newTestNotifier(2525)
	err := n.Send(context.Background(), types.Mail{To: []string{" , "}, Subject: "x"})
	if !errors.Is(err, ErrNoRecipients) {
		t.Errorf("Send() error = %v, want ErrNoRecipients", err)
	}
}

func TestBuildMessage_PlainText(t *testing.T) {
	msg, err := buildMessage("from@example.com", []string{"a@example.com", "b@example.com"},
		types.Mail{Subject: "BingeBuddy", Text: "Show A S1E1 2024-06-02"},
		time.Date(2024, 6, 2, 14, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("buildMessage() error = %v", err)
	}
	s := string(msg)

	if !strings.Contains(s, "To: a@example.com, b@example.com\r\n") {
		t.Errorf("missing To header:\n%s", s)
	}
	if !strings.Contains(s, "Content-Type: text/plain; charset=utf-8\r\n") {
		t.Errorf("missing plain content type:\n%s", s)
	}
	if strings.Contains(s, "multipart") {
		t.Errorf("plain message should not be multipart:\n%s", s)
	}
	if !strings.HasSuffix(s, "Show A S1E1 2024-06-02") {
		t.Errorf("unexpected body:\n%s", s)
	}
}

func TestParseAddresses(t *testing.T) {
	got := parseAddresses(" a@example.com, ,b@example.com ")
	if len(got) != 2 || got[0] != "a@example.com" || got[1] != "b@example.com" {
		t.Errorf("parseAddresses() = %v", got)
	}
	if parseAddresses("") != nil {
		t.Error("parseAddresses(\"\") should be nil")
	}
}
