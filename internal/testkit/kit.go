package testkit

import (
	"phylosensi/adapters/match"
	"phylosensi/adapters/rng"
	"phylosensi/app"
	"phylosensi/ports"
)

// Kit wires fakes and real adapters into ready-to-use test fixtures.
type Kit struct {
	Fitter *FakeFitter
}

// NewKit creates a test kit with a fresh fake fitter.
func NewKit() *Kit {
	return &Kit{Fitter: NewFakeFitter()}
}

// Matcher returns the real tree/data matcher.
func (k *Kit) Matcher() ports.DataTreeMatcher {
	return match.NewTreeData()
}

// RNG returns the real seeded RNG adapter.
func (k *Kit) RNG() ports.RNG {
	return rng.NewSeeded()
}

// Service wires a sensitivity service over the fake fitter.
func (k *Kit) Service() *app.SensitivityService {
	return app.NewSensitivityService(k.Matcher(), k.Fitter, k.RNG(), nil)
}
