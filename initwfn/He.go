package initwfn

import G "gorgonia.org/gorgonia"

// HeUConfig implements a configuration of the He uniform
// initialization algorithm with a given gain.
type HeUConfig struct {
	Gain float64
}

// NewHeU returns a new He uniform weight initializer
func NewHeU(gain float64) (*InitWFn, error) {
	return newInitWFn(HeUConfig{Gain: gain})
}

// Type returns the type of the weight initializer this config
// describes
func (h HeUConfig) Type() Type {
	return HeU
}

// Create creates the Gorgonia InitWFn described by this config
func (h HeUConfig) Create() G.InitWFn {
	return G.HeU(h.Gain)
}

// HeNConfig implements a configuration of the He normal
// initialization algorithm with a given gain.
type HeNConfig struct {
	Gain float64
}

// NewHeN returns a new He normal weight initializer
func NewHeN(gain float64) (*InitWFn, error) {
	return newInitWFn(HeNConfig{Gain: gain})
}

// Type returns the type of the weight initializer this config
// describes
func (h HeNConfig) Type() Type {
	return HeN
}

// Create creates the Gorgonia InitWFn described by this config
func (h HeNConfig) Create() G.InitWFn {
	return G.HeN(h.Gain)
}
