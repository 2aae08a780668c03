package providers

import (
	"github.com/samber/do/v2"

	"github.com/nexogroup/nexo-server/internal/auth"
	"github.com/nexogroup/nexo-server/internal/config"
	"github.com/nexogroup/nexo-server/internal/logger"
)

// ProvideSessionTokens provides the PASETO session token service.
func ProvideSessionTokens(i do.Injector) (*auth.SessionTokens, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.SessionKey(cfg.Auth.Secret, cfg.Data.Path)
	if err != nil {
		return nil, err
	}

	log.Info("Session key loaded",
		"configured", cfg.Auth.Secret != "",
		"session_duration", cfg.Auth.SessionDuration,
	)

	return auth.NewSessionTokens(key, cfg.Auth.SessionDuration)
}

// ProvideInviteTokens provides the invite token generator.
func ProvideInviteTokens(i do.Injector) (*auth.InviteTokens, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewInviteTokens(cfg.Auth.InviteTTL, nil), nil
}
