package mail

import (
	"context"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/dschom/recoverykey"
)

// Config holds SMTP connection and sender settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLS enforces transport encryption. Implicit TLS on port 465,
	// STARTTLS otherwise.
	TLS      bool
	From     string
	FromName string
}

// Mailer delivers recovery key notifications over SMTP. It satisfies
// [recoverykey.Mailer].
type Mailer struct {
	cfg Config
}

// NewMailer validates the SMTP settings and returns a Mailer.
func NewMailer(cfg Config) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg}, nil
}

// SendPostAddRecoveryKeyEmail notifies every address on the account that a
// recovery key was created and confirmed.
func (m *Mailer) SendPostAddRecoveryKeyEmail(ctx context.Context, addresses []string, account recoverykey.AccountRecord, meta recoverykey.EmailMeta) error {
	subject := "New account recovery key created"
	body := renderBody(
		"A new account recovery key was created for your account.",
		"If this wasn't you, sign in and remove the key immediately, then change your password.",
		meta,
	)
	return m.send(ctx, addresses, subject, body, meta.DispatchID)
}

// SendPostRemoveRecoveryKeyEmail notifies every address on the account that
// the recovery key was deleted.
func (m *Mailer) SendPostRemoveRecoveryKeyEmail(ctx context.Context, addresses []string, account recoverykey.AccountRecord, meta recoverykey.EmailMeta) error {
	subject := "Account recovery key removed"
	body := renderBody(
		"The account recovery key for your account was removed.",
		"Without a recovery key, resetting your password may make encrypted data unrecoverable. If this wasn't you, change your password immediately.",
		meta,
	)
	return m.send(ctx, addresses, subject, body, meta.DispatchID)
}

func renderBody(lead, warning string, meta recoverykey.EmailMeta) string {
	var b strings.Builder
	b.WriteString(lead)
	b.WriteString("\n\n")
	if meta.ClientIP != "" {
		fmt.Fprintf(&b, "IP address: %s\n", meta.ClientIP)
	}
	if meta.UserAgent != "" {
		fmt.Fprintf(&b, "Device: %s\n", meta.UserAgent)
	}
	b.WriteString("\n")
	b.WriteString(warning)
	b.WriteString("\n")
	return b.String()
}

func (m *Mailer) send(ctx context.Context, addresses []string, subject, body, dispatchID string) error {
	if len(addresses) == 0 {
		return fmt.Errorf("no recipient addresses")
	}

	msg := gomail.NewMsg()

	if m.cfg.FromName != "" {
		if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(m.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(addresses...); err != nil {
		return fmt.Errorf("setting to addresses: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	if dispatchID != "" {
		msg.SetGenHeader("X-Dispatch-Id", dispatchID)
	}

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
	}

	if m.cfg.TLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
		if m.cfg.Port == 465 {
			opts = append(opts, gomail.WithSSL())
		}
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
