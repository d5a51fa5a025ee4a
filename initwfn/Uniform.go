package initwfn

import G "gorgonia.org/gorgonia"

// UniformConfig implements a configuration of a weight initializer
// that draws weights uniformly from the interval [Low, High).
type UniformConfig struct {
	Low, High float64
}

// NewUniform returns a new uniform weight initializer
func NewUniform(low, high float64) (*InitWFn, error) {
	return newInitWFn(UniformConfig{Low: low, High: high})
}

// Type returns the type of the weight initializer this config
// describes
func (u UniformConfig) Type() Type {
	return Uniform
}

// Create creates the Gorgonia InitWFn described by this config
func (u UniformConfig) Create() G.InitWFn {
	return G.Uniform(u.Low, u.High)
}
