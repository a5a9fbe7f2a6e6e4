// Package accessory owns the shadow state of the light and turns host
// get/set calls into device commands.
package accessory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/hyperiond/internal/effects"
	"github.com/dokzlo13/hyperiond/internal/hyperion"
)

const (
	// EffectPriority is the fixed priority used for effect commands.
	EffectPriority = 50
	// DefaultOrigin identifies this bridge to the device when starting effects.
	DefaultOrigin = "My Fancy App"
)

// ErrCommandFailed wraps every failed device command returned from a set handler.
var ErrCommandFailed = errors.New("device command failed")

// Property names a host-exposed control.
type Property string

const (
	PropertyOn         Property = "on"
	PropertyBrightness Property = "brightness"
	PropertyHue        Property = "hue"
	PropertySaturation Property = "saturation"
	PropertyEffect     Property = "effect"
)

// Sender sends a single command to the device.
type Sender interface {
	Send(ctx context.Context, cmd hyperion.Command) hyperion.Result
}

// Reporter receives values confirmed by the controller so the host-side
// property can be updated.
type Reporter interface {
	Report(prop Property, value any)
}

type nopReporter struct{}

func (nopReporter) Report(Property, any) {}

// Option configures a Controller.
type Option func(*Controller)

// WithOrigin overrides the origin tag sent with effect commands.
func WithOrigin(origin string) Option {
	return func(c *Controller) {
		c.origin = origin
	}
}

// WithReporter sets the host reporter.
func WithReporter(r Reporter) Option {
	return func(c *Controller) {
		c.SetReporter(r)
	}
}

// Controller mediates between host property handlers and the device.
//
// Get handlers read the shadow and never touch the network. Set handlers
// derive commands from the shadow, send them, and commit the shadow only
// after the device confirms. The exception is On, which is committed before
// the command because the device has no power state of its own.
//
// The mutex guards the shadow only; it is never held across a round trip,
// so concurrent sets for the same property race and the last one to
// complete wins.
type Controller struct {
	sender   Sender
	effects  *effects.Registry
	priority int
	origin   string

	mu       sync.Mutex
	state    State
	reporter Reporter
}

// NewController creates a controller with the default shadow.
func NewController(sender Sender, registry *effects.Registry, priority int, opts ...Option) *Controller {
	if registry == nil {
		registry = effects.NewRegistry(nil)
	}
	c := &Controller{
		sender:   sender,
		effects:  registry,
		priority: priority,
		origin:   DefaultOrigin,
		state:    DefaultState(),
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetReporter replaces the host reporter. A nil reporter discards reports.
func (c *Controller) SetReporter(r Reporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r == nil {
		r = nopReporter{}
	}
	c.reporter = r
}

// Effects returns the effect registry.
func (c *Controller) Effects() *effects.Registry {
	return c.effects
}

// State returns a copy of the shadow.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the JSON view of the shadow.
func (c *Controller) Snapshot() Snapshot {
	s := c.State()
	return Snapshot{
		On:          s.On,
		Brightness:  s.Brightness,
		Hue:         s.Hue(),
		Saturation:  s.Saturation,
		RGB:         s.Color.RGB(),
		EffectIndex: s.EffectIndex,
		Effect:      c.effects.NameAt(s.EffectIndex),
	}
}

// SetOn commits the power state immediately. Turning off clears the
// configured priority; turning on re-applies the last color.
func (c *Controller) SetOn(ctx context.Context, on bool) error {
	c.mu.Lock()
	c.state.On = on
	saturation := c.state.Saturation
	c.mu.Unlock()

	log.Info().Bool("on", on).Msg("Set Characteristic On")

	var err error
	if on {
		err = c.applySaturation(ctx, saturation)
	} else {
		err = c.clear(ctx)
	}

	c.report(PropertyOn, on)
	return err
}

// GetOn returns the shadow power state.
func (c *Controller) GetOn() bool {
	c.mu.Lock()
	on := c.state.On
	c.mu.Unlock()

	log.Debug().Bool("on", on).Msg("Get Characteristic On")
	return on
}

// SetBrightness sends a brightness adjustment. Zero is ignored: it neither
// reaches the device nor changes the shadow, and it does not switch power.
func (c *Controller) SetBrightness(ctx context.Context, brightness int) error {
	if brightness == 0 {
		log.Info().Msg("Ignoring brightness 0")
		return nil
	}

	log.Info().Int("brightness", brightness).Msg("Set Characteristic Brightness")

	res := c.sender.Send(ctx, hyperion.NewAdjustment(brightness))
	if !res.Succeeded {
		err := commandError(hyperion.CommandAdjustment, res)
		log.Error().Err(err).Int("brightness", brightness).Msg("Failed to set the brightness")
		return err
	}

	c.mu.Lock()
	c.state.Brightness = brightness
	c.mu.Unlock()

	c.report(PropertyBrightness, brightness)
	return nil
}

// GetBrightness returns the shadow brightness.
func (c *Controller) GetBrightness() int {
	c.mu.Lock()
	brightness := c.state.Brightness
	c.mu.Unlock()

	log.Debug().Int("brightness", brightness).Msg("Get Characteristic Brightness")
	return brightness
}

// SetHue buffers the hue in the shadow color. Nothing is sent: the color is
// flushed by the next saturation write, power-on, or return to color mode.
func (c *Controller) SetHue(hue float64) {
	c.mu.Lock()
	c.state.Color = c.state.Color.WithHue(hue)
	next := c.state.Color
	c.mu.Unlock()

	log.Info().Float64("hue", hue).Str("color", next.Hex()).Msg("Set Characteristic Hue")
	c.report(PropertyHue, next.Hue())
}

// GetHue returns the hue of the shadow color.
func (c *Controller) GetHue() float64 {
	c.mu.Lock()
	hue := c.state.Color.Hue()
	c.mu.Unlock()

	log.Debug().Float64("hue", hue).Msg("Get Characteristic Hue")
	return hue
}

// SetSaturation sends the shadow color with saturation replaced. A nil value
// re-sends the current saturation.
func (c *Controller) SetSaturation(ctx context.Context, saturation *float64) error {
	c.mu.Lock()
	value := c.state.Saturation
	c.mu.Unlock()

	if saturation != nil {
		value = *saturation
	}
	return c.applySaturation(ctx, value)
}

// GetSaturation returns the shadow saturation. A non-nil hint is written to
// the shadow first and echoed back.
func (c *Controller) GetSaturation(hint *float64) float64 {
	c.mu.Lock()
	if hint != nil {
		c.state.Saturation = *hint
	}
	saturation := c.state.Saturation
	c.mu.Unlock()

	log.Debug().Float64("saturation", saturation).Msg("Get Characteristic Saturation")
	return saturation
}

// SetEffect activates the effect at index. An index resolving to "none"
// returns to color mode by re-sending the current color; it does not clear.
// A nil index re-applies the current one.
func (c *Controller) SetEffect(ctx context.Context, index *int) error {
	c.mu.Lock()
	value := c.state.EffectIndex
	c.mu.Unlock()

	if index != nil {
		value = *index
	}

	name := c.effects.NameAt(value)
	log.Info().Int("index", value).Str("effect", name).Msg("Set Characteristic Effect")

	if c.effects.IsNone(value) {
		return c.returnToColor(ctx, value)
	}

	res := c.sender.Send(ctx, hyperion.NewEffect(name, EffectPriority, c.origin))
	if !res.Succeeded {
		err := commandError(hyperion.CommandEffect, res)
		log.Error().Err(err).Str("effect", name).Msg("Failed to change the effect")
		return err
	}

	c.mu.Lock()
	c.state.EffectIndex = value
	c.mu.Unlock()

	c.report(PropertyEffect, value)
	return nil
}

// GetEffect returns the shadow effect index. A non-nil hint is written to
// the shadow first and echoed back.
func (c *Controller) GetEffect(hint *int) int {
	c.mu.Lock()
	if hint != nil {
		c.state.EffectIndex = *hint
	}
	index := c.state.EffectIndex
	c.mu.Unlock()

	log.Debug().Int("index", index).Msg("Get Characteristic Effect")
	return index
}

func (c *Controller) applySaturation(ctx context.Context, saturation float64) error {
	c.mu.Lock()
	next := c.state.Color.WithSaturation(saturation)
	c.mu.Unlock()

	log.Info().
		Float64("saturation", saturation).
		Ints("rgb", next.RGB()).
		Msg("Set Characteristic Saturation")

	res := c.sender.Send(ctx, hyperion.NewColor(c.priority, next.RGB()))
	if !res.Succeeded {
		err := commandError(hyperion.CommandColor, res)
		log.Error().Err(err).Float64("saturation", saturation).Msg("Failed to set the saturation")
		return err
	}

	c.mu.Lock()
	c.state.Saturation = saturation
	c.state.Color = next
	c.mu.Unlock()

	c.report(PropertySaturation, saturation)
	return nil
}

func (c *Controller) returnToColor(ctx context.Context, index int) error {
	c.mu.Lock()
	next := c.state.Color.WithSaturation(c.state.Saturation)
	c.mu.Unlock()

	res := c.sender.Send(ctx, hyperion.NewColor(c.priority, next.RGB()))
	if !res.Succeeded {
		err := commandError(hyperion.CommandColor, res)
		log.Error().Err(err).Msg("Failed to switch from effect to color mode")
		return err
	}

	c.mu.Lock()
	c.state.Color = next
	c.state.EffectIndex = index
	c.mu.Unlock()

	log.Info().Ints("rgb", next.RGB()).Msg("Switched from effect to color mode")
	c.report(PropertyEffect, index)
	return nil
}

func (c *Controller) clear(ctx context.Context) error {
	log.Debug().Int("priority", c.priority).Msg("Sending clear request")

	res := c.sender.Send(ctx, hyperion.NewClear(c.priority))
	if !res.Succeeded {
		err := commandError(hyperion.CommandClear, res)
		log.Error().Err(err).Int("priority", c.priority).Msg("Failed to clear priority")
		return err
	}
	return nil
}

func (c *Controller) report(prop Property, value any) {
	c.mu.Lock()
	r := c.reporter
	c.mu.Unlock()
	r.Report(prop, value)
}

func commandError(command string, res hyperion.Result) error {
	return fmt.Errorf("%w: %s: %s", ErrCommandFailed, command, res.Reason())
}

var _ Sender = (*hyperion.Client)(nil)
