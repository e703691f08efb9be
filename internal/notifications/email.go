package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/SscSPs/budget_request_app/internal/core/ports/repositories"
	"github.com/SscSPs/budget_request_app/internal/platform/config"
	"github.com/SscSPs/budget_request_app/internal/utils"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// MailSender hands one message to a mail transport.
type MailSender interface {
	SendMail(from string, to []string, msg io.Reader) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	addr       string
	user       string
	password   string
	tlsEnabled bool
}

// NewSMTPSender returns nil when cfg has no host, which disables email.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	if !cfg.Enabled() {
		return nil
	}
	return &SMTPSender{
		addr:       net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		user:       cfg.User,
		password:   cfg.Password,
		tlsEnabled: cfg.TLSEnabled,
	}
}

func (s *SMTPSender) SendMail(from string, to []string, msg io.Reader) error {
	var auth sasl.Client
	if s.user != "" {
		auth = sasl.NewPlainClient("", s.user, s.password)
	}
	if s.tlsEnabled {
		return smtp.SendMailTLS(s.addr, auth, from, to, msg)
	}
	return smtp.SendMail(s.addr, auth, from, to, msg)
}

// EmailSink mails the request owner and the reviewers of the next stage.
type EmailSink struct {
	sender MailSender
	users  repositories.UserReader
	from   string
	logger *slog.Logger
	now    func() time.Time
}

// NewEmailSink builds the sink. A nil sender turns every delivery into a skip.
func NewEmailSink(sender MailSender, users repositories.UserReader, from string, logger *slog.Logger) *EmailSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailSink{
		sender: sender,
		users:  users,
		from:   from,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, ev domain.TransitionOccurred) error {
	if s.sender == nil {
		return ErrSkipped
	}

	to, err := s.recipients(ctx, ev)
	if err != nil {
		return err
	}
	if len(to) == 0 {
		return ErrSkipped
	}

	msg := s.compose(to, ev)
	if err := s.sender.SendMail(s.from, to, strings.NewReader(msg)); err != nil {
		return fmt.Errorf("sending transition mail for %s: %w", ev.RequestID, err)
	}
	s.logger.InfoContext(ctx, "Transition mail sent", slog.String("request_id", ev.RequestID), slog.Int("recipients", len(to)))
	return nil
}

// recipients returns distinct addresses of the owner and next reviewers, minus the actor.
func (s *EmailSink) recipients(ctx context.Context, ev domain.TransitionOccurred) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(u domain.User) {
		if u.Email == "" || !u.IsActive || u.UserID == ev.ActorID || seen[u.Email] {
			return
		}
		seen[u.Email] = true
		out = append(out, u.Email)
	}

	owner, err := s.users.FindUserByID(ctx, ev.OwnerID)
	switch {
	case err == nil:
		add(*owner)
	case errors.Is(err, apperrors.ErrNotFound):
		s.logger.WarnContext(ctx, "Request owner unknown to user directory", slog.String("owner_id", ev.OwnerID))
	default:
		return nil, fmt.Errorf("looking up request owner: %w", err)
	}

	if q, ok := domain.NextReviewers(ev.ToStatus, ev.Department); ok {
		reviewers, err := s.users.FindActiveUsers(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("looking up reviewers: %w", err)
		}
		for _, u := range reviewers {
			add(u)
		}
	}
	return out, nil
}

func (s *EmailSink) compose(to []string, ev domain.TransitionOccurred) string {
	subject := fmt.Sprintf("Demande budgétaire « %s » : %s", ev.Title, ev.ToStatus.Label())

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "La demande « %s » est passée de « %s » à « %s ».\r\n", ev.Title, ev.FromStatus.Label(), ev.ToStatus.Label())
	fmt.Fprintf(&b, "Référence : %s\r\n", ev.RequestID)
	fmt.Fprintf(&b, "Montant : %s\r\n", utils.FormatXOF(ev.Amount))
	if ev.Comment != "" {
		fmt.Fprintf(&b, "Commentaire : %s\r\n", ev.Comment)
	}
	return b.String()
}
