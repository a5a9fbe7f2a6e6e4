package hyperion

// Command names understood by the device JSON-RPC endpoint.
const (
	CommandAdjustment = "adjustment"
	CommandColor      = "color"
	CommandEffect     = "effect"
	CommandClear      = "clear"
)

// Command is the request envelope posted to the device.
// Only the fields relevant to Name are serialized.
type Command struct {
	Name       string      `json:"command"`
	Priority   *int        `json:"priority,omitempty"`
	Color      []int       `json:"color,omitempty"`
	Adjustment *Adjustment `json:"adjustment,omitempty"`
	Effect     *Effect     `json:"effect,omitempty"`
	Origin     string      `json:"origin,omitempty"`
}

// Adjustment carries the brightness adjustment in percent.
type Adjustment struct {
	Brightness int `json:"brightness"`
}

// Effect names a device-side effect.
type Effect struct {
	Name string `json:"name"`
}

// NewAdjustment builds an "adjustment" command setting brightness (0-100).
func NewAdjustment(brightness int) Command {
	return Command{
		Name:       CommandAdjustment,
		Adjustment: &Adjustment{Brightness: brightness},
	}
}

// NewColor builds a "color" command for a solid RGB color at priority.
func NewColor(priority int, rgb []int) Command {
	return Command{
		Name:     CommandColor,
		Priority: &priority,
		Color:    rgb,
	}
}

// NewEffect builds an "effect" command.
func NewEffect(name string, priority int, origin string) Command {
	return Command{
		Name:     CommandEffect,
		Priority: &priority,
		Effect:   &Effect{Name: name},
		Origin:   origin,
	}
}

// NewClear builds a "clear" command for priority.
func NewClear(priority int) Command {
	return Command{
		Name:     CommandClear,
		Priority: &priority,
	}
}
