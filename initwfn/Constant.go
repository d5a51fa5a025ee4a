package initwfn

import G "gorgonia.org/gorgonia"

// ZeroesConfig implements a configuration of a weight initializer
// that initializes all weights to 0.
type ZeroesConfig struct{}

// NewZeroes returns a new zeroes weight initializer
func NewZeroes() (*InitWFn, error) {
	return newInitWFn(ZeroesConfig{})
}

// Type returns the type of the weight initializer this config
// describes
func (z ZeroesConfig) Type() Type {
	return Zeroes
}

// Create creates the Gorgonia InitWFn described by this config
func (z ZeroesConfig) Create() G.InitWFn {
	return G.Zeroes()
}

// OnesConfig implements a configuration of a weight initializer that
// initializes all weights to 1.
type OnesConfig struct{}

// NewOnes returns a new ones weight initializer
func NewOnes() (*InitWFn, error) {
	return newInitWFn(OnesConfig{})
}

// Type returns the type of the weight initializer this config
// describes
func (o OnesConfig) Type() Type {
	return Ones
}

// Create creates the Gorgonia InitWFn described by this config
func (o OnesConfig) Create() G.InitWFn {
	return G.ValuesOf(1.0)
}

// ConstantConfig implements a configuration of a weight initializer
// that initializes all weights to a constant value.
type ConstantConfig struct {
	Value float64
}

// NewConstant returns a new constant weight initializer
func NewConstant(value float64) (*InitWFn, error) {
	return newInitWFn(ConstantConfig{Value: value})
}

// Type returns the type of the weight initializer this config
// describes
func (c ConstantConfig) Type() Type {
	return Constant
}

// Create creates the Gorgonia InitWFn described by this config
func (c ConstantConfig) Create() G.InitWFn {
	return G.ValuesOf(c.Value)
}
