package accessory

import "github.com/dokzlo13/hyperiond/internal/color"

// Default shadow values. The shadow always starts here, fresh or restored;
// the device is never queried for its real state.
const (
	DefaultBrightness  = 100
	DefaultEffectIndex = 0
)

// DefaultColor is the warm white the accessory starts with.
var DefaultColor = color.FromRGB(255, 200, 150)

// State is the in-memory shadow of the device. It has no behavior of its own;
// the Controller is its only writer.
type State struct {
	On          bool
	Brightness  int
	Saturation  float64
	Color       color.Color
	EffectIndex int
}

// DefaultState returns the shadow every accessory starts with.
func DefaultState() State {
	return State{
		On:          false,
		Brightness:  DefaultBrightness,
		Saturation:  DefaultColor.Saturation(),
		Color:       DefaultColor,
		EffectIndex: DefaultEffectIndex,
	}
}

// Hue is derived from the stored color.
func (s State) Hue() float64 {
	return s.Color.Hue()
}

// Snapshot is the JSON view of State served by the health endpoint.
type Snapshot struct {
	On          bool    `json:"on"`
	Brightness  int     `json:"brightness"`
	Hue         float64 `json:"hue"`
	Saturation  float64 `json:"saturation"`
	RGB         []int   `json:"rgb"`
	EffectIndex int     `json:"effect_index"`
	Effect      string  `json:"effect"`
}
