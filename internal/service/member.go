package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/search"
	"github.com/nexogroup/nexo-server/internal/store"
)

// MemberService serves the member directory and administrative status changes.
type MemberService struct {
	store     store.Store
	directory Directory
	logger    *slog.Logger
	now       func() time.Time
}

// NewMemberService creates a member service.
func NewMemberService(store store.Store, directory Directory, logger *slog.Logger) *MemberService {
	return &MemberService{
		store:     store,
		directory: directory,
		logger:    logger,
		now:       time.Now,
	}
}

// ListMembersRequest filters the directory. With Query set, results come
// back in relevance order.
type ListMembersRequest struct {
	Status  domain.MemberStatus
	Query   string
	Segment string
	Limit   int
}

// UpdateStatusRequest is an administrative status override.
type UpdateStatusRequest struct {
	Status domain.MemberStatus `json:"status" validate:"required,oneof=ACTIVE INACTIVE SUSPENDED"`
}

// List returns members by name, or by search relevance when searching.
func (s *MemberService) List(ctx context.Context, req ListMembersRequest) ([]*domain.Member, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, domainerrors.Validationf("unknown member status %q", req.Status)
	}

	text := strings.TrimSpace(req.Query)
	segment := strings.TrimSpace(req.Segment)
	if text == "" && segment == "" {
		members, err := s.store.ListMembers(ctx, store.MemberFilter{Status: req.Status})
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		return members, nil
	}

	hits, err := s.directory.Search(ctx, search.Query{
		Text:    text,
		Status:  req.Status,
		Segment: segment,
		Limit:   req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	if len(hits) == 0 {
		return []*domain.Member{}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}

	members, err := s.store.ListMembers(ctx, store.MemberFilter{Status: req.Status, IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	byID := make(map[string]*domain.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	// The index can briefly lag the store, so skip hits that no longer match.
	ordered := make([]*domain.Member, 0, len(members))
	for _, memberID := range ids {
		if m, ok := byID[memberID]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered, nil
}

// Get returns a member. Members may only read their own record.
func (s *MemberService) Get(ctx context.Context, caller Caller, memberID string) (*domain.Member, error) {
	if !caller.CanActFor(memberID) {
		return nil, domainerrors.Forbidden("members may only view their own record")
	}

	m, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, notFound(err, "member", memberID)
	}
	return m, nil
}

// UpdateStatus applies an administrative override. INVITED members can only
// become ACTIVE by registering, so they cannot be overridden at all.
func (s *MemberService) UpdateStatus(ctx context.Context, memberID string, req UpdateStatusRequest) (*domain.Member, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	m, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, notFound(err, "member", memberID)
	}

	if m.Status == domain.MemberInvited {
		return nil, domainerrors.InvalidState("invited members must register before their status can change")
	}

	from := m.Status
	if err := m.TransitionTo(req.Status); err != nil {
		return nil, err
	}
	m.Touch(utcNow(s.now))

	if err := s.store.UpdateMemberStatus(ctx, m, from); err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return nil, domainerrors.InvalidStatef("member %s changed status concurrently", m.ID)
		}
		return nil, fmt.Errorf("update member status: %w", err)
	}

	s.logger.Info("member status changed",
		"member_id", m.ID,
		"from", from,
		"to", m.Status,
	)

	if err := s.directory.Index(m); err != nil {
		s.logger.Error("reindex member", "member_id", m.ID, "error", err)
	}

	return m, nil
}
