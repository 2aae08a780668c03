package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/store"
)

// intentionColumns must match the scan order in scanIntention.
const intentionColumns = `id, created_at, updated_at, name, email, phone, company, message, status`

func scanIntention(sc scanner) (*domain.Intention, error) {
	var (
		in        domain.Intention
		createdAt string
		updatedAt string
		phone     sql.NullString
		company   sql.NullString
		message   sql.NullString
		status    string
	)

	if err := sc.Scan(&in.ID, &createdAt, &updatedAt, &in.Name, &in.Email, &phone, &company, &message, &status); err != nil {
		return nil, err
	}

	var err error
	if in.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if in.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	in.Phone = phone.String
	in.Company = company.String
	in.Message = message.String
	in.Status = domain.IntentionStatus(status)

	return &in, nil
}

// CreateIntention inserts a new intention.
// Returns store.ErrAlreadyExists if one exists for the email, in any status.
func (s *Store) CreateIntention(ctx context.Context, in *domain.Intention) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO intentions (`+intentionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID,
		formatTime(in.CreatedAt),
		formatTime(in.UpdatedAt),
		in.Name,
		in.Email,
		nullString(in.Phone),
		nullString(in.Company),
		nullString(in.Message),
		string(in.Status),
	)
	return mapWriteErr(err)
}

// GetIntention returns store.ErrNotFound if id is unknown.
func (s *Store) GetIntention(ctx context.Context, id string) (*domain.Intention, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+intentionColumns+` FROM intentions WHERE id = ?`, id)
	in, err := scanIntention(row)
	return in, mapReadErr(err)
}

// GetIntentionByEmail matches email case-insensitively.
func (s *Store) GetIntentionByEmail(ctx context.Context, email string) (*domain.Intention, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+intentionColumns+` FROM intentions WHERE email = ?`, email)
	in, err := scanIntention(row)
	return in, mapReadErr(err)
}

// ListIntentions returns intentions newest first.
func (s *Store) ListIntentions(ctx context.Context, filter store.IntentionFilter) ([]*domain.Intention, error) {
	var w whereBuilder
	if filter.Status != "" {
		w.add("status = ?", string(filter.Status))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+intentionColumns+` FROM intentions`+w.String()+` ORDER BY created_at DESC, id DESC`,
		w.args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanIntention)
}

// ApproveIntention marks the intention APPROVED and writes the invited member
// in one transaction. The intention update is conditional on PENDING, and an
// existing member row for the same email is re-invited only while it is
// INVITED or INACTIVE; either miss returns store.ErrStaleState and nothing
// is written.
func (s *Store) ApproveIntention(ctx context.Context, in *domain.Intention, m *domain.Member) (*domain.Member, error) {
	var out *domain.Member

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE intentions SET status = ?, updated_at = ?
			WHERE id = ? AND status = ?`,
			string(domain.IntentionApproved), formatTime(in.UpdatedAt),
			in.ID, string(domain.IntentionPending))
		if err != nil {
			return fmt.Errorf("approve intention: %w", err)
		}
		if err := expectOne(res, store.ErrStaleState); err != nil {
			return err
		}

		existing, err := scanMember(tx.QueryRowContext(ctx,
			`SELECT `+memberColumns+` FROM members WHERE email = ?`, m.Email))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if err := insertMember(ctx, tx, m); err != nil {
				return fmt.Errorf("insert member: %w", err)
			}
			out = m
			return nil
		case err != nil:
			return fmt.Errorf("lookup member: %w", err)
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE members SET
				status = ?, invite_token = ?, token_expiry = ?,
				intention_id = ?, name = ?, updated_at = ?
			WHERE id = ? AND status IN (?, ?)`,
			string(domain.MemberInvited), nullString(m.InviteToken), nullTimeString(m.TokenExpiry),
			nullString(m.IntentionID), m.Name, formatTime(m.UpdatedAt),
			existing.ID, string(domain.MemberInvited), string(domain.MemberInactive))
		if err != nil {
			return fmt.Errorf("re-invite member: %w", mapWriteErr(err))
		}
		if err := expectOne(res, store.ErrStaleState); err != nil {
			return err
		}

		out, err = scanMember(tx.QueryRowContext(ctx,
			`SELECT `+memberColumns+` FROM members WHERE id = ?`, existing.ID))
		return err
	})
	if err != nil {
		return nil, err
	}

	in.Status = domain.IntentionApproved
	return out, nil
}

// RejectIntention marks the intention REJECTED if it is still PENDING.
func (s *Store) RejectIntention(ctx context.Context, in *domain.Intention) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE intentions SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.IntentionRejected), formatTime(in.UpdatedAt),
		in.ID, string(domain.IntentionPending))
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrStaleState)
}
