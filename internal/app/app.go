package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/hyperiond/internal/config"
)

// App runs the bridge: the HomeKit accessory server in front of the device
// client, plus the optional health endpoint.
type App struct {
	cfg      *config.Config
	services *Services
	ctx      context.Context
	cancel   context.CancelFunc
}

// New wires the bridge from cfg. Nothing listens and nothing is sent to the
// device until Start.
func New(cfg *config.Config) (*App, error) {
	services, err := NewServices(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		services: services,
	}, nil
}

// Start publishes the accessory. Cancelling ctx, or a failure of the HAP
// server, ends the run.
func (a *App) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	onFatalError := func(err error) {
		log.Error().Err(err).Msg("Accessory server failed, shutting down bridge")
		a.cancel()
	}

	if err := a.services.Start(a.ctx, onFatalError); err != nil {
		return err
	}

	log.Info().
		Str("accessory", a.cfg.Name).
		Str("device", a.cfg.Endpoint()).
		Msg("Bridge is running")
	return nil
}

// Stop unpublishes the accessory and closes the store.
func (a *App) Stop() error {
	log.Info().Str("accessory", a.cfg.Name).Msg("Stopping bridge")

	if a.cancel != nil {
		a.cancel()
	}

	if a.services != nil {
		return a.services.Stop()
	}

	return nil
}

// Wait blocks until the bridge is asked to stop.
func (a *App) Wait() {
	if a.ctx != nil {
		<-a.ctx.Done()
	}
}

// ResetPairings forgets every paired controller so the accessory can be
// added to a new home. Returns the number of removed entries.
func (a *App) ResetPairings() (int64, error) {
	if a.services != nil {
		return a.services.ResetPairings()
	}
	return 0, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	return ctx
}
