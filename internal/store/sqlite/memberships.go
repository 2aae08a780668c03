package sqlite

import (
	"context"
	"database/sql"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/store"
)

// membershipColumns must match the scan order in scanMembership.
const membershipColumns = `id, created_at, updated_at, member_id, due_date,
	amount_cents, status, paid_at, payment_method, notes`

func scanMembership(sc scanner) (*domain.Membership, error) {
	var (
		ms        domain.Membership
		createdAt string
		updatedAt string
		dueDate   string
		status    string
		paidAt    sql.NullString
		method    sql.NullString
		notes     sql.NullString
	)

	err := sc.Scan(&ms.ID, &createdAt, &updatedAt, &ms.MemberID, &dueDate,
		&ms.AmountCents, &status, &paidAt, &method, &notes)
	if err != nil {
		return nil, err
	}

	if ms.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if ms.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if ms.DueDate, err = parseTime(dueDate); err != nil {
		return nil, err
	}
	if ms.PaidAt, err = parseNullableTime(paidAt); err != nil {
		return nil, err
	}

	ms.Status = domain.MembershipStatus(status)
	ms.PaymentMethod = domain.PaymentMethod(method.String)
	ms.Notes = notes.String

	return &ms, nil
}

// CreateMembership inserts a dues record.
func (s *Store) CreateMembership(ctx context.Context, ms *domain.Membership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memberships (`+membershipColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ms.ID,
		formatTime(ms.CreatedAt),
		formatTime(ms.UpdatedAt),
		ms.MemberID,
		formatTime(ms.DueDate),
		ms.AmountCents,
		string(ms.Status),
		nullTimeString(ms.PaidAt),
		nullString(string(ms.PaymentMethod)),
		nullString(ms.Notes),
	)
	return mapWriteErr(err)
}

// GetMembership returns store.ErrNotFound if id is unknown.
func (s *Store) GetMembership(ctx context.Context, id string) (*domain.Membership, error) {
	ms, err := scanMembership(s.db.QueryRowContext(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = ?`, id))
	return ms, mapReadErr(err)
}

// ListMemberships returns dues ordered by due date, latest first.
func (s *Store) ListMemberships(ctx context.Context, filter store.MembershipFilter) ([]*domain.Membership, error) {
	var w whereBuilder
	if filter.MemberID != "" {
		w.add("member_id = ?", filter.MemberID)
	}
	if filter.Status != "" {
		w.add("status = ?", string(filter.Status))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships`+w.String()+` ORDER BY due_date DESC, id DESC`,
		w.args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanMembership)
}

// MarkMembershipPaid writes the payment fields only while the row is PENDING,
// which keeps them write-once under concurrent payments.
func (s *Store) MarkMembershipPaid(ctx context.Context, ms *domain.Membership) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE memberships SET
			status = ?, paid_at = ?, payment_method = ?, notes = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.MembershipPaid), nullTimeString(ms.PaidAt),
		nullString(string(ms.PaymentMethod)), nullString(ms.Notes), formatTime(ms.UpdatedAt),
		ms.ID, string(domain.MembershipPending))
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrStaleState)
}
