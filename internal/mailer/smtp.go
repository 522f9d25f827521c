package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/models"
)

// sendMailFunc is [smtp.SendMail] bound to a context.
type sendMailFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	addr    string
	from    mail.Address
	auth    smtp.Auth
	timeout time.Duration
	send    sendMailFunc
	now     func() time.Time

	logger *logger.Logger
}

// NewSMTPMailer builds an SMTP backend. PLAIN authentication is used when a
// username is configured.
func NewSMTPMailer(cfg config.Mail, log *logger.Logger) (*SMTPMailer, error) {
	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("%w: sender: %w", ErrInvalidRecipient, err)
	}

	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}

	m := &SMTPMailer{
		addr:    net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		from:    *from,
		auth:    auth,
		timeout: cfg.Timeout,
		now:     time.Now,
		logger:  log,
	}
	m.send = m.sendMail

	return m, nil
}

func (m *SMTPMailer) SendConfirmation(ctx context.Context, confirmation models.ConfirmationMail) error {
	log := logger.FromContext(ctx)

	to, err := mail.ParseAddress(confirmation.To)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecipient, err)
	}

	msg, err := renderConfirmation(confirmation)
	if err != nil {
		return err
	}

	raw, err := m.compose(*to, msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendingMail, err)
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	if err = m.send(ctx, m.addr, m.auth, m.from.Address, []string{to.Address}, raw); err != nil {
		log.Err(err).Str("func", "SMTPMailer.SendConfirmation").Str("relay", m.addr).Msg("smtp relay refused the message")
		if isTemporarySMTPError(err) {
			return fmt.Errorf("%w: %w: %w", ErrTemporaryFailure, ErrSendingMail, err)
		}
		return fmt.Errorf("%w: %w", ErrSendingMail, err)
	}

	log.Info().Str("func", "SMTPMailer.SendConfirmation").Msg("confirmation mail sent")
	return nil
}

// sendMail runs one SMTP session. Every read and write on the connection is
// bounded by the earlier of the ctx deadline and the configured timeout, and
// cancelling ctx closes the connection.
func (m *SMTPMailer) sendMail(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err = conn.SetDeadline(deadline); err != nil {
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err = c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err = c.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err = c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err = c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}

	return c.Quit()
}

// isTemporarySMTPError reports whether err is a network failure or a 4xx
// reply of the relay.
func isTemporarySMTPError(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code >= 400 && protoErr.Code < 500
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// compose builds a multipart/alternative message with a text and an HTML part.
func (m *SMTPMailer) compose(to mail.Address, msg message) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", p.contentType)
		header.Set("Content-Transfer-Encoding", "8bit")

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if _, err = part.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var raw bytes.Buffer
	fmt.Fprintf(&raw, "From: %s\r\n", m.from.String())
	fmt.Fprintf(&raw, "To: %s\r\n", to.String())
	fmt.Fprintf(&raw, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&raw, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	raw.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&raw, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", writer.Boundary())
	raw.Write(body.Bytes())

	return raw.Bytes(), nil
}
