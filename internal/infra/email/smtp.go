package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"crimewatch/internal/domain/mailer"
)

var _ mailer.Transport = (*SMTPTransport)(nil)

// Options holds SMTP connection settings.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string

	// Secure selects implicit TLS (port 465 style). When false the transport
	// dials in plaintext and upgrades via STARTTLS if the server offers it.
	Secure bool

	FromAddress string
	FromName    string
}

// SMTPTransport delivers mail over SMTP with PLAIN authentication.
type SMTPTransport struct {
	opts Options
}

// NewSMTPTransport creates a new SMTP transport.
func NewSMTPTransport(opts Options) *SMTPTransport {
	return &SMTPTransport{opts: opts}
}

// Send delivers a single message. One attempt per call, no internal retry.
func (t *SMTPTransport) Send(ctx context.Context, msg *mailer.Message) error {
	client, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Mail(t.opts.FromAddress); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(t.buildMessage(msg)); err != nil {
		return fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message body: %w", err)
	}

	return nil
}

// Verify performs the full connection handshake (dial, EHLO, TLS, AUTH)
// without sending anything.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	client, err := t.connect(ctx)
	if err != nil {
		return err
	}
	return client.Quit()
}

// connect dials the server and authenticates, honoring the context deadline
// for the whole exchange.
func (t *SMTPTransport) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(t.opts.Host, strconv.Itoa(t.opts.Port))

	var conn net.Conn
	var err error
	if t.opts.Secure {
		dialer := &tls.Dialer{
			NetDialer: &net.Dialer{},
			Config:    &tls.Config{ServerName: t.opts.Host},
		}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dialing smtp server %s: %w", addr, err)
	}

	// The smtp.Client API is not context-aware; a context deadline bounds the
	// remaining protocol exchange through the connection deadline.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.opts.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}

	if !t.opts.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: t.opts.Host}); err != nil {
				client.Close()
				return nil, fmt.Errorf("smtp STARTTLS: %w", err)
			}
		}
	}

	auth := smtp.PlainAuth("", t.opts.Username, t.opts.Password, t.opts.Host)
	if err := client.Auth(auth); err != nil {
		client.Close()
		return nil, fmt.Errorf("smtp auth: %w", err)
	}

	return client, nil
}

// buildMessage assembles the RFC 2822 message with an HTML body.
func (t *SMTPTransport) buildMessage(msg *mailer.Message) []byte {
	from := t.opts.FromAddress
	if t.opts.FromName != "" {
		from = fmt.Sprintf("%s <%s>", t.opts.FromName, t.opts.FromAddress)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	return []byte(b.String())
}
