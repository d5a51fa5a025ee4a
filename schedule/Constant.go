package schedule

// ConstantConfig implements a configuration of a schedule that keeps
// the step size fixed for the whole of training
type ConstantConfig struct {
	StepSize float64
}

// NewConstant returns a new schedule with a fixed step size
func NewConstant(stepSize float64) (*Schedule, error) {
	return newSchedule(Constant, ConstantConfig{StepSize: stepSize})
}

// At returns the step size after step training steps
func (c ConstantConfig) At(step int) float64 {
	return c.StepSize
}

// ValidType returns if the given Schedule type is a valid type to be
// created with this config.
func (c ConstantConfig) ValidType(t Type) bool {
	return t == Constant
}
