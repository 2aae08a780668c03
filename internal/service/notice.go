package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/id"
	"github.com/nexogroup/nexo-server/internal/normalize"
	"github.com/nexogroup/nexo-server/internal/store"
)

// NoticeService manages the group notice board.
type NoticeService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewNoticeService creates a notice service.
func NewNoticeService(store store.Store, logger *slog.Logger) *NoticeService {
	return &NoticeService{store: store, logger: logger, now: time.Now}
}

// CreateNoticeRequest posts a notice.
type CreateNoticeRequest struct {
	Title      string            `json:"title" validate:"required,min=2,max=200"`
	Content    string            `json:"content" validate:"required,max=10000"`
	Type       domain.NoticeType `json:"type,omitempty" validate:"omitempty,oneof=GENERAL MEETING EVENT URGENT"`
	AuthorName string            `json:"authorName,omitempty" validate:"omitempty,max=120"`
}

// Create posts an active notice. Type defaults to GENERAL.
func (s *NoticeService) Create(ctx context.Context, req CreateNoticeRequest) (*domain.Notice, error) {
	req.Title = normalize.Text(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	req.AuthorName = normalize.Text(req.AuthorName)
	if req.Type == "" {
		req.Type = domain.NoticeGeneral
	}

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	noticeID, err := id.Generate(id.PrefixNotice)
	if err != nil {
		return nil, fmt.Errorf("generate notice ID: %w", err)
	}

	n := &domain.Notice{
		Title:      req.Title,
		Content:    req.Content,
		Type:       req.Type,
		AuthorName: req.AuthorName,
		Active:     true,
	}
	n.ID = noticeID
	n.InitTimestamps(utcNow(s.now))

	if err := s.store.CreateNotice(ctx, n); err != nil {
		return nil, fmt.Errorf("create notice: %w", err)
	}

	s.logger.Info("notice posted", "notice_id", n.ID, "type", n.Type)
	return n, nil
}

// List returns notices newest first. Only admins may include inactive ones.
func (s *NoticeService) List(ctx context.Context, caller Caller, includeInactive bool) ([]*domain.Notice, error) {
	list, err := s.store.ListNotices(ctx, includeInactive && caller.IsAdmin())
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return list, nil
}

// Deactivate hides a notice from the board. Deactivating twice is a no-op.
func (s *NoticeService) Deactivate(ctx context.Context, noticeID string) (*domain.Notice, error) {
	if err := s.store.DeactivateNotice(ctx, noticeID, utcNow(s.now)); err != nil {
		return nil, notFound(err, "notice", noticeID)
	}

	n, err := s.store.GetNotice(ctx, noticeID)
	if err != nil {
		return nil, notFound(err, "notice", noticeID)
	}

	s.logger.Info("notice deactivated", "notice_id", n.ID)
	return n, nil
}
