// Package notify renders member notifications and records them in the
// email log. Nothing is delivered: the log is the outbox.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/id"
)

//go:embed templates/*.html
var templateFS embed.FS

// Recorder persists rendered messages.
type Recorder interface {
	CreateEmailLog(ctx context.Context, log *domain.EmailLog) error
}

// Config holds the values templates need.
type Config struct {
	PublicURL string
	GroupName string
}

// Notifier renders and records notifications.
type Notifier struct {
	recorder  Recorder
	logger    *slog.Logger
	publicURL string
	groupName string
	msgDomain string
	pages     map[domain.EmailKind]*template.Template
	now       func() time.Time
}

type message struct {
	GroupName string
	Name      string
	Link      string
	Expiry    string
	Reason    string
}

// New parses the embedded templates.
func New(recorder Recorder, cfg Config, logger *slog.Logger) (*Notifier, error) {
	if cfg.GroupName == "" {
		cfg.GroupName = "Nexo"
	}

	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[domain.EmailKind]*template.Template, 3)
	for kind, file := range map[domain.EmailKind]string{
		domain.EmailInvite:    "templates/invite.html",
		domain.EmailRejection: "templates/rejection.html",
		domain.EmailWelcome:   "templates/welcome.html",
	} {
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if pages[kind], err = clone.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	}

	msgDomain := "localhost"
	if u, err := url.Parse(cfg.PublicURL); err == nil && u.Hostname() != "" {
		msgDomain = u.Hostname()
	}

	return &Notifier{
		recorder:  recorder,
		logger:    logger,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		groupName: cfg.GroupName,
		msgDomain: msgDomain,
		pages:     pages,
		now:       time.Now,
	}, nil
}

// RegistrationURL is the link an invited applicant follows to register.
func (n *Notifier) RegistrationURL(token string) string {
	return n.publicURL + "/register?token=" + url.QueryEscape(token)
}

// Invite records the invitation for a freshly approved member.
func (n *Notifier) Invite(ctx context.Context, m *domain.Member) (*domain.EmailLog, error) {
	msg := message{
		Name: m.Name,
		Link: n.RegistrationURL(m.InviteToken),
	}
	if m.TokenExpiry != nil {
		msg.Expiry = m.TokenExpiry.UTC().Format("January 2, 2006 15:04 MST")
	}
	return n.send(ctx, domain.EmailInvite, m.Email, "Your invitation to "+n.groupName, msg)
}

// Rejection records the rejection notice. reason may be empty.
func (n *Notifier) Rejection(ctx context.Context, in *domain.Intention, reason string) (*domain.EmailLog, error) {
	msg := message{
		Name:   in.Name,
		Reason: strings.TrimSpace(reason),
	}
	return n.send(ctx, domain.EmailRejection, in.Email, "About your application to "+n.groupName, msg)
}

// Welcome records the welcome message after registration.
func (n *Notifier) Welcome(ctx context.Context, m *domain.Member) (*domain.EmailLog, error) {
	msg := message{
		Name: m.Name,
		Link: n.publicURL + "/login",
	}
	return n.send(ctx, domain.EmailWelcome, m.Email, "Welcome to "+n.groupName, msg)
}

func (n *Notifier) send(ctx context.Context, kind domain.EmailKind, to, subject string, msg message) (*domain.EmailLog, error) {
	msg.GroupName = n.groupName

	var buf bytes.Buffer
	if err := n.pages[kind].ExecuteTemplate(&buf, "layout", msg); err != nil {
		return nil, fmt.Errorf("render %s email: %w", kind, err)
	}
	htmlBody := buf.String()

	textBody, err := htmltomarkdown.ConvertString(htmlBody)
	if err != nil {
		n.logger.Warn("plain text conversion failed", "kind", kind, "error", err)
		textBody = htmlBody
	}

	logID, err := id.Generate(id.PrefixEmail)
	if err != nil {
		return nil, err
	}

	entry := &domain.EmailLog{
		ID:        logID,
		MessageID: "<" + uuid.NewString() + "@" + n.msgDomain + ">",
		To:        to,
		Subject:   subject,
		HTMLBody:  htmlBody,
		TextBody:  strings.TrimSpace(textBody),
		Kind:      kind,
		Status:    domain.EmailStatusLogged,
		CreatedAt: n.now().UTC(),
	}

	if err := n.recorder.CreateEmailLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("record %s email: %w", kind, err)
	}

	n.logger.Info("email logged",
		"kind", kind,
		"to", to,
		"message_id", entry.MessageID,
	)

	return entry, nil
}
