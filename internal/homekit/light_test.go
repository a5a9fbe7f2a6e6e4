package homekit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brutella/hap/characteristic"

	hyperacc "github.com/dokzlo13/hyperiond/internal/accessory"
	"github.com/dokzlo13/hyperiond/internal/effects"
	"github.com/dokzlo13/hyperiond/internal/hyperion"
)

type stubSender struct {
	cmds []hyperion.Command
	fail bool
}

func (s *stubSender) Send(_ context.Context, cmd hyperion.Command) hyperion.Result {
	s.cmds = append(s.cmds, cmd)
	if s.fail {
		return hyperion.Result{Payload: []byte(`{"success":false}`)}
	}
	return hyperion.Result{Succeeded: true}
}

func newTestLight(names ...string) (*Light, *hyperacc.Controller, *stubSender) {
	sender := &stubSender{}
	ctrl := hyperacc.NewController(sender, effects.NewRegistry(names), 50)
	l := NewLight(context.Background(), Info{
		Name:         "TV backlight",
		Platform:     "HyperionJub",
		Manufacturer: "JUB",
		Model:        "HomeBridge to hyperion",
	}, ctrl)
	return l, ctrl, sender
}

func TestIdentity_IsStable(t *testing.T) {
	a := Identity("HyperionJub")
	b := Identity("HyperionJub")
	c := Identity("Other")

	if a != b {
		t.Errorf("Identity() not stable: %s != %s", a, b)
	}
	if a == c {
		t.Error("different platforms share an identity")
	}
	if a.Version() != 5 {
		t.Errorf("Version() = %d, want 5 (name-based SHA-1)", a.Version())
	}
}

func TestEffectDescriptor(t *testing.T) {
	d := EffectDescriptor(3)
	if d.Type != TypeEffect {
		t.Errorf("Type = %q", d.Type)
	}
	if d.Format != characteristic.FormatUInt16 {
		t.Errorf("Format = %q, want uint16", d.Format)
	}
	if d.Min != 0 || d.Max != 3 || d.Step != 1 {
		t.Errorf("bounds = %d..%d step %d, want 0..3 step 1", d.Min, d.Max, d.Step)
	}
	if len(d.Permissions) != 3 {
		t.Errorf("Permissions = %v, want read/write/events", d.Permissions)
	}

	c := d.NewInt()
	if c.Value() != 0 {
		t.Errorf("initial value = %d, want 0", c.Value())
	}
	if c.StepValue() != 1 {
		t.Errorf("StepValue() = %v, want 1", c.StepValue())
	}
	if c.MaxValue() != 3 {
		t.Errorf("MaxValue() = %v, want 3", c.MaxValue())
	}
}

func TestNewLight_SeedsFromShadow(t *testing.T) {
	l, ctrl, _ := newTestLight()
	s := ctrl.State()

	if l.bulb.On.Value() != s.On {
		t.Errorf("On = %v, want %v", l.bulb.On.Value(), s.On)
	}
	if l.brightness.Value() != s.Brightness {
		t.Errorf("Brightness = %d, want %d", l.brightness.Value(), s.Brightness)
	}
	if l.effect != nil {
		t.Error("effect characteristic registered without configured effects")
	}
	if l.A.Id != 1 {
		t.Errorf("Id = %d, want 1", l.A.Id)
	}
}

func TestNewLight_RegistersEffect(t *testing.T) {
	l, _, _ := newTestLight("Rainbow", "Police")
	if l.effect == nil {
		t.Fatal("effect characteristic missing")
	}
}

func TestLight_ReceivesConfirmedValues(t *testing.T) {
	l, ctrl, sender := newTestLight("Rainbow", "Police")
	ctx := context.Background()

	if err := ctrl.SetBrightness(ctx, 35); err != nil {
		t.Fatalf("SetBrightness() error = %v", err)
	}
	if err := ctrl.SetEffect(ctx, intPtr(2)); err != nil {
		t.Fatalf("SetEffect() error = %v", err)
	}
	if err := ctrl.SetOn(ctx, true); err != nil {
		t.Fatalf("SetOn() error = %v", err)
	}

	if l.brightness.Value() != 35 {
		t.Errorf("Brightness = %d, want 35", l.brightness.Value())
	}
	if l.effect.Value() != 2 {
		t.Errorf("Effect = %d, want 2", l.effect.Value())
	}
	if !l.bulb.On.Value() {
		t.Error("On = false, want true")
	}
	if len(sender.cmds) != 3 {
		t.Errorf("sent %d commands, want 3", len(sender.cmds))
	}
}

func remoteWrite() *http.Request {
	return httptest.NewRequest(http.MethodPut, "/characteristics", nil)
}

func TestLight_RemoteWrites(t *testing.T) {
	tests := []struct {
		name  string
		fail  bool
		write func(l *Light)
		check func(t *testing.T, l *Light, s hyperacc.State)
	}{
		{
			name:  "brightness_confirmed",
			write: func(l *Light) { l.brightness.SetValueRequest(40, remoteWrite()) },
			check: func(t *testing.T, l *Light, s hyperacc.State) {
				if s.Brightness != 40 || l.brightness.Value() != 40 {
					t.Errorf("brightness shadow=%d characteristic=%d, want 40", s.Brightness, l.brightness.Value())
				}
			},
		},
		{
			name:  "brightness_rolls_back",
			fail:  true,
			write: func(l *Light) { l.brightness.SetValueRequest(40, remoteWrite()) },
			check: func(t *testing.T, l *Light, s hyperacc.State) {
				if s.Brightness != 100 || l.brightness.Value() != 100 {
					t.Errorf("brightness shadow=%d characteristic=%d, want 100", s.Brightness, l.brightness.Value())
				}
			},
		},
		{
			name:  "saturation_rolls_back",
			fail:  true,
			write: func(l *Light) { l.saturation.SetValueRequest(90.0, remoteWrite()) },
			check: func(t *testing.T, l *Light, s hyperacc.State) {
				if l.saturation.Value() != s.Saturation || s.Saturation == 90 {
					t.Errorf("saturation shadow=%v characteristic=%v, want the default kept", s.Saturation, l.saturation.Value())
				}
			},
		},
		{
			name:  "effect_rolls_back",
			fail:  true,
			write: func(l *Light) { l.effect.SetValueRequest(2, remoteWrite()) },
			check: func(t *testing.T, l *Light, s hyperacc.State) {
				if s.EffectIndex != 0 || l.effect.Value() != 0 {
					t.Errorf("effect shadow=%d characteristic=%d, want 0", s.EffectIndex, l.effect.Value())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ctrl, sender := newTestLight("Rainbow", "Police")
			sender.fail = tt.fail

			tt.write(l)

			if len(sender.cmds) != 1 {
				t.Fatalf("sent %d commands, want 1", len(sender.cmds))
			}
			tt.check(t, l, ctrl.State())
		})
	}
}

func intPtr(v int) *int {
	return &v
}
