package app

import (
	"context"
	"sync/atomic"

	"github.com/brutella/hap"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/hyperiond/internal/accessory"
	"github.com/dokzlo13/hyperiond/internal/config"
	"github.com/dokzlo13/hyperiond/internal/homekit"
	"github.com/dokzlo13/hyperiond/internal/storage"
)

// hapBucket is the kv_store bucket holding the HAP server's pairings and keys.
const hapBucket = "hap"

// HomeKitService runs the HAP server exposing the light accessory.
type HomeKitService struct {
	cfg   *config.Config
	ctrl  *accessory.Controller
	store *storage.Bucket

	Light  *homekit.Light
	server *hap.Server
	ready  atomic.Bool
}

// NewHomeKitService creates a new HomeKitService.
func NewHomeKitService(cfg *config.Config, ctrl *accessory.Controller, store *storage.Bucket) *HomeKitService {
	return &HomeKitService{
		cfg:   cfg,
		ctrl:  ctrl,
		store: store,
	}
}

// Start registers the accessory and starts serving in the background.
func (s *HomeKitService) Start(ctx context.Context, onFatalError func(error)) error {
	identity := homekit.Identity(s.cfg.Platform)

	s.Light = homekit.NewLight(ctx, homekit.Info{
		Name:         s.cfg.Name,
		Platform:     s.cfg.Platform,
		Manufacturer: s.cfg.HomeKit.Manufacturer,
		Model:        s.cfg.HomeKit.Model,
		Serial:       s.cfg.HomeKit.Serial,
	}, s.ctrl)

	server, err := hap.NewServer(s.store, s.Light.A)
	if err != nil {
		return err
	}
	server.Pin = s.cfg.HomeKit.Pin
	server.Addr = s.cfg.HomeKit.Addr
	s.server = server

	log.Info().
		Str("name", s.cfg.Name).
		Str("identity", identity.String()).
		Str("addr", s.cfg.HomeKit.Addr).
		Msg("Registered accessory")

	go func() {
		s.ready.Store(true)
		defer s.ready.Store(false)
		if err := server.ListenAndServe(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("HAP server error")
			if onFatalError != nil {
				onFatalError(err)
			}
		}
	}()

	return nil
}

// Ready reports whether the HAP server is serving.
func (s *HomeKitService) Ready() bool {
	return s.ready.Load()
}
