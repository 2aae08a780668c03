package service

import (
	"context"
	"fmt"

	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/normalize"
	"github.com/nexogroup/nexo-server/internal/store"
)

// EmailLogService exposes the outbound notification log.
type EmailLogService struct {
	store store.Store
}

// NewEmailLogService creates an email log service.
func NewEmailLogService(store store.Store) *EmailLogService {
	return &EmailLogService{store: store}
}

// List returns logged messages newest first.
func (s *EmailLogService) List(ctx context.Context, to string, kind domain.EmailKind) ([]*domain.EmailLog, error) {
	switch kind {
	case "", domain.EmailInvite, domain.EmailRejection, domain.EmailWelcome:
	default:
		return nil, domainerrors.Validationf("unknown email kind %q", kind)
	}

	list, err := s.store.ListEmailLogs(ctx, store.EmailFilter{To: normalize.Email(to), Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	return list, nil
}
