package homekit

import "github.com/brutella/hap/characteristic"

// TypeEffect is the custom characteristic type carrying the effect index.
const TypeEffect = "F8D871FA-A67A-43FE-872D-5250F055D17C"

// Descriptor is a static description of a custom characteristic.
type Descriptor struct {
	Type        string
	Name        string
	Format      string
	Unit        string
	Min         int
	Max         int
	Step        int
	Permissions []string
}

// EffectDescriptor describes the effect selector with the range 0..maxIndex.
// Index 0 means no effect.
func EffectDescriptor(maxIndex int) Descriptor {
	return Descriptor{
		Type:   TypeEffect,
		Name:   "Effect",
		Format: characteristic.FormatUInt16,
		Unit:   "effect",
		Min:    0,
		Max:    maxIndex,
		Step:   1,
		Permissions: []string{
			characteristic.PermissionRead,
			characteristic.PermissionWrite,
			characteristic.PermissionEvents,
		},
	}
}

// NewInt builds an integer characteristic from d with value 0.
func (d Descriptor) NewInt() *characteristic.Int {
	c := characteristic.NewInt(d.Type)
	c.Format = d.Format
	c.Permissions = d.Permissions
	c.Description = d.Name
	c.Unit = d.Unit
	c.SetMinValue(d.Min)
	c.SetMaxValue(d.Max)
	c.SetStepValue(d.Step)
	c.SetValue(0)

	return c
}
