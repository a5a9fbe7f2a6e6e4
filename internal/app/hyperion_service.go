package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/hyperiond/internal/accessory"
	"github.com/dokzlo13/hyperiond/internal/config"
	"github.com/dokzlo13/hyperiond/internal/effects"
	"github.com/dokzlo13/hyperiond/internal/hyperion"
)

// HyperionService wraps the device client and the controller that owns the shadow.
type HyperionService struct {
	cfg *config.Config

	Client     *hyperion.Client
	Effects    *effects.Registry
	Controller *accessory.Controller
}

// NewHyperionService creates the device client and controller. Nothing is sent
// to the device until the host writes a characteristic.
func NewHyperionService(cfg *config.Config) *HyperionService {
	client := hyperion.NewClient(
		cfg.Endpoint(),
		cfg.Token,
		cfg.Hyperion.Timeout.Duration(),
		cfg.Hyperion.RateLimitRPS,
	)

	registry := effects.NewRegistry(cfg.Effects)
	if registry.Len() > 0 {
		log.Debug().Int("count", registry.Len()).Strs("effects", registry.Names()).Msg("Effects enabled")
	}

	controller := accessory.NewController(client, registry, cfg.GetPriority(),
		accessory.WithOrigin(cfg.Hyperion.Origin),
	)

	log.Info().
		Str("endpoint", client.Endpoint()).
		Int("priority", cfg.GetPriority()).
		Str("origin", cfg.Hyperion.Origin).
		Msg("Hyperion client configured")

	return &HyperionService{
		cfg:        cfg,
		Client:     client,
		Effects:    registry,
		Controller: controller,
	}
}

// Close releases all resources.
func (s *HyperionService) Close() {
	if s.Client != nil {
		s.Client.Close()
	}
}
