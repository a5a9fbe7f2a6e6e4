package homekit

import "github.com/google/uuid"

// Namespace is the fixed namespace under which accessory identities are derived.
var Namespace = uuid.MustParse("769518a6-5220-4a81-9ef4-d6eac26d8730")

// Identity returns the stable identifier for the accessory of platform.
// The same platform always maps to the same identity, so a restarted host
// restores the accessory it already paired instead of creating a new one.
func Identity(platform string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(platform))
}
