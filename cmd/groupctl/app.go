package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nexogroup/nexo-server/internal/auth"
	"github.com/nexogroup/nexo-server/internal/config"
	"github.com/nexogroup/nexo-server/internal/logger"
	"github.com/nexogroup/nexo-server/internal/metrics"
	"github.com/nexogroup/nexo-server/internal/notify"
	"github.com/nexogroup/nexo-server/internal/search"
	"github.com/nexogroup/nexo-server/internal/service"
	"github.com/nexogroup/nexo-server/internal/store"
	"github.com/nexogroup/nexo-server/internal/store/sqlite"
)

// app is the slice of the server's service graph the CLI needs.
type app struct {
	store *sqlite.Store
	index *search.MemberIndex

	intentions   *service.IntentionService
	registration *service.RegistrationService
	meetings     *service.MeetingService
	notices      *service.NoticeService
	dashboard    *service.DashboardService
}

func openApp(flags *globalFlags) (*app, error) {
	cfg, err := config.Parse(flags.configArgs())
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateOffline(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log := logger.New(logger.Config{
		Writer: os.Stderr,
		Level:  logger.ParseLevel(cfg.Logger.Level),
	})

	if err := os.MkdirAll(cfg.Data.Path, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	st, err := sqlite.Open(cfg.Data.DatabasePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	a, err := newApp(st, cfg, log)
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

func newApp(st *sqlite.Store, cfg *config.Config, log *logger.Logger) (*app, error) {
	index, err := search.NewMemberIndex(log.Logger)
	if err != nil {
		return nil, err
	}
	members, err := st.ListMembers(context.Background(), store.MemberFilter{})
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("load members: %w", err)
	}
	if err := index.Rebuild(members); err != nil {
		index.Close()
		return nil, err
	}

	notifier, err := notify.New(st, notify.Config{
		PublicURL: cfg.Server.PublicURL,
		GroupName: cfg.App.GroupName,
	}, log.Logger)
	if err != nil {
		index.Close()
		return nil, err
	}

	tokens := auth.NewInviteTokens(cfg.Auth.InviteTTL, nil)
	m := metrics.New()

	return &app{
		store:        st,
		index:        index,
		intentions:   service.NewIntentionService(st, tokens, notifier, index, m, log.Logger),
		registration: service.NewRegistrationService(st, tokens, notifier, index, m, log.Logger),
		meetings:     service.NewMeetingService(st, m, log.Logger),
		notices:      service.NewNoticeService(st, log.Logger),
		dashboard:    service.NewDashboardService(st),
	}, nil
}

// Close releases the index and the database.
func (a *app) Close() {
	a.index.Close()
	a.store.Close()
}
