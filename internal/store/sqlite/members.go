package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/store"
)

// memberColumns must match the scan order in scanMember.
const memberColumns = `id, created_at, updated_at, name, email, status,
	invite_token, token_expiry, intention_id, password_hash,
	phone, company, position, segment, bio, linkedin, website`

func scanMember(sc scanner) (*domain.Member, error) {
	var (
		m            domain.Member
		createdAt    string
		updatedAt    string
		status       string
		inviteToken  sql.NullString
		tokenExpiry  sql.NullString
		intentionID  sql.NullString
		passwordHash sql.NullString
		phone        sql.NullString
		company      sql.NullString
		position     sql.NullString
		segment      sql.NullString
		bio          sql.NullString
		linkedIn     sql.NullString
		website      sql.NullString
	)

	err := sc.Scan(
		&m.ID, &createdAt, &updatedAt, &m.Name, &m.Email, &status,
		&inviteToken, &tokenExpiry, &intentionID, &passwordHash,
		&phone, &company, &position, &segment, &bio, &linkedIn, &website,
	)
	if err != nil {
		return nil, err
	}

	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if m.TokenExpiry, err = parseNullableTime(tokenExpiry); err != nil {
		return nil, err
	}

	m.Status = domain.MemberStatus(status)
	m.InviteToken = inviteToken.String
	m.IntentionID = intentionID.String
	m.PasswordHash = passwordHash.String
	m.MemberProfile = domain.MemberProfile{
		Phone:    phone.String,
		Company:  company.String,
		Position: position.String,
		Segment:  segment.String,
		Bio:      bio.String,
		LinkedIn: linkedIn.String,
		Website:  website.String,
	}

	return &m, nil
}

func insertMember(ctx context.Context, q queryer, m *domain.Member) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
		m.Name,
		m.Email,
		string(m.Status),
		nullString(m.InviteToken),
		nullTimeString(m.TokenExpiry),
		nullString(m.IntentionID),
		nullString(m.PasswordHash),
		nullString(m.Phone),
		nullString(m.Company),
		nullString(m.Position),
		nullString(m.Segment),
		nullString(m.Bio),
		nullString(m.LinkedIn),
		nullString(m.Website),
	)
	return mapWriteErr(err)
}

// CreateMember inserts a member directly (seeding and CLI imports).
// Returns store.ErrAlreadyExists on a duplicate email or invite token.
func (s *Store) CreateMember(ctx context.Context, m *domain.Member) error {
	return insertMember(ctx, s.db, m)
}

// GetMember returns store.ErrNotFound if id is unknown.
func (s *Store) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id))
	return m, mapReadErr(err)
}

// GetMemberByEmail matches email case-insensitively.
func (s *Store) GetMemberByEmail(ctx context.Context, email string) (*domain.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE email = ?`, email))
	return m, mapReadErr(err)
}

// GetMemberByInviteToken looks a member up by invite token.
func (s *Store) GetMemberByInviteToken(ctx context.Context, token string) (*domain.Member, error) {
	if token == "" {
		return nil, store.ErrNotFound
	}
	m, err := scanMember(s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE invite_token = ?`, token))
	return m, mapReadErr(err)
}

// ListMembers returns members ordered by name.
func (s *Store) ListMembers(ctx context.Context, filter store.MemberFilter) ([]*domain.Member, error) {
	var w whereBuilder
	if filter.Status != "" {
		w.add("status = ?", string(filter.Status))
	}
	if len(filter.IDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.IDs)), ",")
		args := make([]any, len(filter.IDs))
		for i, id := range filter.IDs {
			args[i] = id
		}
		w.add("id IN ("+placeholders+")", args...)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members`+w.String()+` ORDER BY name COLLATE NOCASE, id`,
		w.args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanMember)
}

// CompleteRegistration writes the registered profile and status. It only
// matches a row that is still INVITED, so two concurrent redemptions of the
// same token cannot both succeed.
func (s *Store) CompleteRegistration(ctx context.Context, m *domain.Member) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE members SET
			status = ?, password_hash = ?, updated_at = ?,
			phone = ?, company = ?, position = ?, segment = ?,
			bio = ?, linkedin = ?, website = ?
		WHERE id = ? AND status = ?`,
		string(m.Status), nullString(m.PasswordHash), formatTime(m.UpdatedAt),
		nullString(m.Phone), nullString(m.Company), nullString(m.Position), nullString(m.Segment),
		nullString(m.Bio), nullString(m.LinkedIn), nullString(m.Website),
		m.ID, string(domain.MemberInvited))
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrStaleState)
}

// UpdateMemberStatus sets m.Status if the stored status still equals from.
func (s *Store) UpdateMemberStatus(ctx context.Context, m *domain.Member, from domain.MemberStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE members SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(m.Status), formatTime(m.UpdatedAt), m.ID, string(from))
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrStaleState)
}
