package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/store"
)

const noticeColumns = `id, created_at, updated_at, title, content, type, author_name, active`

func scanNotice(sc scanner) (*domain.Notice, error) {
	var (
		n          domain.Notice
		createdAt  string
		updatedAt  string
		noticeType string
		author     sql.NullString
		active     int
	)

	if err := sc.Scan(&n.ID, &createdAt, &updatedAt, &n.Title, &n.Content, &noticeType, &author, &active); err != nil {
		return nil, err
	}

	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	n.Type = domain.NoticeType(noticeType)
	n.AuthorName = author.String
	n.Active = active != 0

	return &n, nil
}

// CreateNotice inserts a notice.
func (s *Store) CreateNotice(ctx context.Context, n *domain.Notice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notices (`+noticeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, formatTime(n.CreatedAt), formatTime(n.UpdatedAt),
		n.Title, n.Content, string(n.Type), nullString(n.AuthorName), boolToInt(n.Active),
	)
	return mapWriteErr(err)
}

// GetNotice returns store.ErrNotFound if id is unknown.
func (s *Store) GetNotice(ctx context.Context, id string) (*domain.Notice, error) {
	n, err := scanNotice(s.db.QueryRowContext(ctx, `SELECT `+noticeColumns+` FROM notices WHERE id = ?`, id))
	return n, mapReadErr(err)
}

// ListNotices returns notices newest first.
func (s *Store) ListNotices(ctx context.Context, includeInactive bool) ([]*domain.Notice, error) {
	var w whereBuilder
	if !includeInactive {
		w.add("active = 1")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noticeColumns+` FROM notices`+w.String()+` ORDER BY created_at DESC, id DESC`,
		w.args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanNotice)
}

// DeactivateNotice hides a notice. Deactivating twice is a no-op; an unknown
// id returns store.ErrNotFound.
func (s *Store) DeactivateNotice(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notices SET active = 0, updated_at = ? WHERE id = ?`,
		formatTime(at), id)
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrNotFound)
}

const thankColumns = `id, created_at, from_member_id, to_member_id, message, business_value_cents`

func scanThank(sc scanner) (*domain.Thank, error) {
	var (
		th        domain.Thank
		createdAt string
	)

	if err := sc.Scan(&th.ID, &createdAt, &th.FromMemberID, &th.ToMemberID, &th.Message, &th.BusinessValueCents); err != nil {
		return nil, err
	}

	var err error
	if th.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &th, nil
}

// CreateThank inserts a thank.
func (s *Store) CreateThank(ctx context.Context, th *domain.Thank) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO thanks (`+thankColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		th.ID, formatTime(th.CreatedAt), th.FromMemberID, th.ToMemberID, th.Message, th.BusinessValueCents,
	)
	return mapWriteErr(err)
}

// ListThanks returns thanks newest first.
func (s *Store) ListThanks(ctx context.Context, filter store.ThankFilter) ([]*domain.Thank, error) {
	var w whereBuilder
	if filter.MemberID != "" {
		w.add("(from_member_id = ? OR to_member_id = ?)", filter.MemberID, filter.MemberID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+thankColumns+` FROM thanks`+w.String()+` ORDER BY created_at DESC, id DESC`,
		w.args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanThank)
}

const emailLogColumns = `id, created_at, message_id, recipient, subject, html_body, text_body, kind, status`

func scanEmailLog(sc scanner) (*domain.EmailLog, error) {
	var (
		e         domain.EmailLog
		createdAt string
		kind      string
	)

	if err := sc.Scan(&e.ID, &createdAt, &e.MessageID, &e.To, &e.Subject, &e.HTMLBody, &e.TextBody, &kind, &e.Status); err != nil {
		return nil, err
	}

	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	e.Kind = domain.EmailKind(kind)
	return &e, nil
}

// CreateEmailLog records a rendered notification.
func (s *Store) CreateEmailLog(ctx context.Context, e *domain.EmailLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_logs (`+emailLogColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, formatTime(e.CreatedAt), e.MessageID, e.To, e.Subject, e.HTMLBody, e.TextBody,
		string(e.Kind), e.Status,
	)
	return mapWriteErr(err)
}

// ListEmailLogs returns logged messages newest first.
func (s *Store) ListEmailLogs(ctx context.Context, filter store.EmailFilter) ([]*domain.EmailLog, error) {
	var w whereBuilder
	if filter.To != "" {
		w.add("recipient = ? COLLATE NOCASE", filter.To)
	}
	if filter.Kind != "" {
		w.add("kind = ?", string(filter.Kind))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+emailLogColumns+` FROM email_logs`+w.String()+` ORDER BY created_at DESC, id DESC`,
		w.args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanEmailLog)
}
