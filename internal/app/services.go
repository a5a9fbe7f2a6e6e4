package app

import (
	"context"

	"github.com/dokzlo13/hyperiond/internal/config"
	"github.com/dokzlo13/hyperiond/internal/db"
	"github.com/dokzlo13/hyperiond/internal/storage"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB       *db.DB
	HAPStore *storage.Bucket

	Hyperion *HyperionService
	HomeKit  *HomeKitService
	Health   *HealthService
}

// NewServices creates all services with proper dependency injection.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	// Initialize database
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = database

	// Host-side accessory cache
	s.HAPStore = storage.NewBucket(database.DB, hapBucket)

	s.Hyperion = NewHyperionService(cfg)
	s.HomeKit = NewHomeKitService(cfg, s.Hyperion.Controller, s.HAPStore)
	s.Health = NewHealthService(cfg, s.Hyperion.Controller, s.HomeKit.Ready)

	return s, nil
}

// Start starts all services in the correct order.
// The onFatalError callback is called when a fatal error occurs (e.g., the HAP server stops).
func (s *Services) Start(ctx context.Context, onFatalError func(error)) error {
	if err := s.HomeKit.Start(ctx, onFatalError); err != nil {
		return err
	}
	s.Health.Start(ctx)

	return nil
}

// ResetPairings removes all stored HAP data (pairings and keys) so the
// accessory can be paired again.
func (s *Services) ResetPairings() (int64, error) {
	return s.HAPStore.Clear()
}

// Stop gracefully stops all services.
func (s *Services) Stop() error {
	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Hyperion != nil {
		s.Hyperion.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
