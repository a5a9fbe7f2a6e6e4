// Package homekit registers the light with the HAP host runtime and routes
// its characteristic reads and writes to the accessory controller.
package homekit

import (
	"context"
	"net/http"

	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
	"github.com/rs/zerolog/log"

	hyperacc "github.com/dokzlo13/hyperiond/internal/accessory"
)

// statusSuccess is the HAP status code for a successful read.
const statusSuccess = 0

// Info describes the accessory to the host.
type Info struct {
	Name         string
	Platform     string
	Manufacturer string
	Model        string
	Serial       string // Defaults to the platform identity
}

// Light is the single HAP accessory exposing the controller.
type Light struct {
	A *accessory.A

	bulb       *service.Lightbulb
	brightness *characteristic.Brightness
	hue        *characteristic.Hue
	saturation *characteristic.Saturation
	effect     *characteristic.Int // nil when no effects are configured

	ctrl *hyperacc.Controller
	ctx  context.Context
}

// NewLight builds the accessory, seeds it from the controller's shadow and
// registers itself as the controller's reporter. ctx bounds the device
// commands issued from remote writes.
func NewLight(ctx context.Context, info Info, ctrl *hyperacc.Controller) *Light {
	serial := info.Serial
	if serial == "" {
		serial = Identity(info.Platform).String()
	}

	a := accessory.New(accessory.Info{
		Name:         info.Name,
		SerialNumber: serial,
		Manufacturer: info.Manufacturer,
		Model:        info.Model,
	}, accessory.TypeLightbulb)
	a.Id = 1

	l := &Light{
		A:          a,
		bulb:       service.NewLightbulb(),
		brightness: characteristic.NewBrightness(),
		hue:        characteristic.NewHue(),
		saturation: characteristic.NewSaturation(),
		ctrl:       ctrl,
		ctx:        ctx,
	}

	name := characteristic.NewName()
	name.SetValue(info.Name)
	l.bulb.AddC(name.C)
	l.bulb.AddC(l.brightness.C)
	l.bulb.AddC(l.hue.C)
	l.bulb.AddC(l.saturation.C)

	if registry := ctrl.Effects(); registry.Len() > 0 {
		l.effect = EffectDescriptor(registry.MaxIndex()).NewInt()
		l.bulb.AddC(l.effect.C)
		log.Debug().Int("max_index", registry.MaxIndex()).Strs("effects", registry.Names()).Msg("Effect characteristic enabled")
	}

	a.AddS(l.bulb.S)

	l.seed()
	l.bind()
	ctrl.SetReporter(l)

	return l
}

// seed copies the shadow into the characteristics.
func (l *Light) seed() {
	s := l.ctrl.State()
	l.bulb.On.SetValue(s.On)
	if err := l.brightness.SetValue(s.Brightness); err != nil {
		log.Warn().Err(err).Int("brightness", s.Brightness).Msg("Failed to seed brightness")
	}
	l.hue.SetValue(s.Hue())
	l.saturation.SetValue(s.Saturation)
	if l.effect != nil {
		if err := l.effect.SetValue(s.EffectIndex); err != nil {
			log.Warn().Err(err).Int("index", s.EffectIndex).Msg("Failed to seed effect")
		}
	}
}

func (l *Light) bind() {
	ctrl := l.ctrl

	l.bulb.On.OnValueRemoteUpdate(func(on bool) {
		if err := ctrl.SetOn(l.ctx, on); err != nil {
			log.Warn().Err(err).Bool("on", on).Msg("Power change not confirmed by device")
		}
	})
	l.bulb.On.ValueRequestFunc = func(*http.Request) (interface{}, int) {
		return ctrl.GetOn(), statusSuccess
	}

	l.brightness.OnValueRemoteUpdate(func(v int) {
		if err := ctrl.SetBrightness(l.ctx, v); err != nil {
			l.Report(hyperacc.PropertyBrightness, ctrl.GetBrightness())
		}
	})
	l.brightness.ValueRequestFunc = func(*http.Request) (interface{}, int) {
		return ctrl.GetBrightness(), statusSuccess
	}

	l.hue.OnValueRemoteUpdate(func(v float64) {
		ctrl.SetHue(v)
	})
	l.hue.ValueRequestFunc = func(*http.Request) (interface{}, int) {
		return ctrl.GetHue(), statusSuccess
	}

	l.saturation.OnValueRemoteUpdate(func(v float64) {
		if err := ctrl.SetSaturation(l.ctx, &v); err != nil {
			l.Report(hyperacc.PropertySaturation, ctrl.GetSaturation(nil))
		}
	})
	l.saturation.ValueRequestFunc = func(*http.Request) (interface{}, int) {
		return ctrl.GetSaturation(nil), statusSuccess
	}

	if l.effect == nil {
		return
	}
	l.effect.OnValueRemoteUpdate(func(v int) {
		if err := ctrl.SetEffect(l.ctx, &v); err != nil {
			l.Report(hyperacc.PropertyEffect, ctrl.GetEffect(nil))
		}
	})
	l.effect.ValueRequestFunc = func(*http.Request) (interface{}, int) {
		return ctrl.GetEffect(nil), statusSuccess
	}
}

// Report pushes a value confirmed by the controller into the matching
// characteristic. It implements accessory.Reporter.
func (l *Light) Report(prop hyperacc.Property, value any) {
	switch prop {
	case hyperacc.PropertyOn:
		if v, ok := value.(bool); ok {
			l.bulb.On.SetValue(v)
		}
	case hyperacc.PropertyBrightness:
		if v, ok := value.(int); ok {
			if err := l.brightness.SetValue(v); err != nil {
				log.Warn().Err(err).Int("brightness", v).Msg("Failed to report brightness")
			}
		}
	case hyperacc.PropertyHue:
		if v, ok := value.(float64); ok {
			l.hue.SetValue(v)
		}
	case hyperacc.PropertySaturation:
		if v, ok := value.(float64); ok {
			l.saturation.SetValue(v)
		}
	case hyperacc.PropertyEffect:
		if v, ok := value.(int); ok && l.effect != nil {
			if err := l.effect.SetValue(v); err != nil {
				log.Warn().Err(err).Int("index", v).Msg("Failed to report effect")
			}
		}
	default:
		log.Warn().Str("property", string(prop)).Msg("Report for unknown property")
	}
}

var _ hyperacc.Reporter = (*Light)(nil)
