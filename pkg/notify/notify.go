// Package notify e-mails generated seev.001 documents to a fixed list of
// recipients.
package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"

	"github.com/coolbeans/seevgen/pkg/extract"
	"github.com/coolbeans/seevgen/pkg/logging"
)

// Config holds SMTP configuration for sending documents.
type Config struct {
	Enabled    bool
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	From       string
	To         []string
}

// Delivery is one generated document.
type Delivery struct {
	FileName string
	Document []byte
	Record   *extract.Record
}

// Transport sends composed messages. *gomail.Dialer satisfies it.
type Transport interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer delivers documents via SMTP.
type Mailer struct {
	cfg       Config
	transport Transport
	logger    *logging.Logger
}

// Option is a functional option for configuring the Mailer.
type Option func(*Mailer)

// WithTransport replaces the SMTP dialer.
func WithTransport(t Transport) Option {
	return func(m *Mailer) {
		m.transport = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Mailer) {
		m.logger = l
	}
}

// NewMailer creates a mailer dialing cfg.SMTPServer.
func NewMailer(cfg Config, options ...Option) *Mailer {
	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	m := &Mailer{
		cfg:       cfg,
		transport: dialer,
		logger:    logging.NewNop(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Enabled reports whether Send delivers anything.
func (m *Mailer) Enabled() bool {
	return m.cfg.Enabled && len(m.cfg.To) > 0
}

// Send delivers d as an XML attachment. It is a no-op when mail is disabled.
func (m *Mailer) Send(ctx context.Context, d Delivery) error {
	if !m.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := m.Message(d)
	if err := m.transport.DialAndSend(msg); err != nil {
		m.logger.Error(ctx, "email delivery failed",
			zap.Strings("to", m.cfg.To),
			zap.String("file", d.FileName),
			zap.Error(err),
		)
		return fmt.Errorf("sending %s: %w", d.FileName, err)
	}

	m.logger.Info(ctx, "email sent", zap.Strings("to", m.cfg.To), zap.String("file", d.FileName))
	return nil
}

// Message composes the e-mail for d.
func (m *Mailer) Message(d Delivery) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To...)
	msg.SetHeader("Subject", Subject(d.Record))
	msg.SetBody("text/plain", Body(d))

	document := d.Document
	msg.Attach(d.FileName,
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/xml; charset=UTF-8"}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(document)
			return err
		}),
	)
	return msg
}

// Subject names the meeting type and issuer.
func Subject(rec *extract.Record) string {
	if rec == nil {
		return "seev.001 meeting notification"
	}
	company := rec.CompanyName
	if company == "" {
		company = extract.DefaultIssuer
	}
	subject := fmt.Sprintf("seev.001 %s notification: %s", rec.MeetingType, company)
	if rec.ISIN != "" {
		subject += " (" + rec.ISIN + ")"
	}
	return subject
}

// Body lists the key meeting facts in plain text.
func Body(d Delivery) string {
	var b strings.Builder
	b.WriteString("A seev.001.001.12 meeting notification is attached.\n\n")
	if rec := d.Record; rec != nil {
		line := func(label, value string) {
			if value != "" {
				fmt.Fprintf(&b, "%-14s %s\n", label+":", value)
			}
		}
		line("Issuer", rec.CompanyName)
		line("Meeting type", string(rec.MeetingType))
		line("ISIN", rec.ISIN)
		line("Meeting date", rec.MeetingDate)
		line("Record date", rec.RecordDate)
		line("Deadline", rec.Deadline)
		line("Location", rec.Location)
		fmt.Fprintf(&b, "%-14s %d\n", "Resolutions:", len(rec.Resolutions))
	}
	fmt.Fprintf(&b, "\nFile: %s\n", d.FileName)
	return b.String()
}
