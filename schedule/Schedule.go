// Package schedule implements learning rate schedules that adjust the
// step size of a solver over the course of training. Like the solver
// package, schedules are described by JSON-serializable configurations
// so that they can be stored in configuration files.
package schedule

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"reflect"
)

// Type describes different types of schedules that are available
type Type string

// Available schedule types
const (
	Constant        Type = "Constant"
	Step            Type = "Step"
	MultiStep       Type = "MultiStep"
	Linear          Type = "Linear"
	CosineAnnealing Type = "CosineAnnealing"
)

// Schedule determines the step size of a solver at each training step.
// Step() advances the schedule by one training step; the new step size
// should then be handed to the solver, e.g. with SetLearnRate().
type Schedule struct {
	Type
	Config
	stepNum int
}

// newSchedule returns a new schedule with the given type and
// configuration
func newSchedule(t Type, c Config) (*Schedule, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newSchedule: invalid schedule type %v for "+
			"configuration %T", t, c)
	}
	return &Schedule{Type: t, Config: c}, nil
}

// Step advances the schedule by one training step and returns the new
// step size
func (s *Schedule) Step() float64 {
	s.stepNum++
	return s.LearnRate()
}

// LearnRate returns the step size at the current training step
func (s *Schedule) LearnRate() float64 {
	return s.Config.At(s.stepNum)
}

// StepNum returns the number of training steps the schedule has taken
func (s *Schedule) StepNum() int {
	return s.stepNum
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (s *Schedule) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(
		data,
		"Type",
		"Config",
		map[string]reflect.Type{
			string(Constant):  reflect.TypeOf(ConstantConfig{}),
			string(Step):      reflect.TypeOf(StepConfig{}),
			string(MultiStep): reflect.TypeOf(MultiStepConfig{}),
			string(Linear):    reflect.TypeOf(LinearConfig{}),
			string(CosineAnnealing): reflect.TypeOf(
				CosineAnnealingConfig{}),
		})
	if err != nil {
		return err
	}

	s.Type = typeName
	s.Config = config

	return nil
}

// unmarshalConfig uses reflection to unmarshal a Config into its
// concrete type, registered in customTypes under the name held in the
// JSON field typeJsonField. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField, valueJsonField string,
	customTypes map[string]reflect.Type) (Config, Type, error) {
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	typeName, ok := m[typeJsonField].(string)
	if !ok {
		return nil, "", fmt.Errorf("unmarshalconfig: no %v field in JSON "+
			"data", typeJsonField)
	}
	ty, found := customTypes[typeName]
	if !found {
		return nil, "", fmt.Errorf("unmarshalconfig: illegal Schedule "+
			"type %v", typeName)
	}
	value := reflect.New(ty).Interface().(Config)

	valueBytes, err := json.Marshal(m[valueJsonField])
	if err != nil {
		return nil, "", err
	}
	if err := json.Unmarshal(valueBytes, &value); err != nil {
		return nil, "", err
	}
	concreteValue := reflect.ValueOf(value).Elem().Interface().(Config)

	return concreteValue, Type(typeName), nil
}

// GobEncode implements the gob.GobEncoder interface. The schedule's
// configuration and its current training step both round-trip, so a
// restored schedule resumes exactly where it left off.
func (s *Schedule) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	config, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not marshal "+
			"configuration: %v", err)
	}
	if err := enc.Encode(config); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode "+
			"configuration: %v", err)
	}
	if err := enc.Encode(s.stepNum); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode step number: %v",
			err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (s *Schedule) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	var config []byte
	if err := dec.Decode(&config); err != nil {
		return fmt.Errorf("gobdecode: could not decode configuration: %v",
			err)
	}
	if err := json.Unmarshal(config, s); err != nil {
		return fmt.Errorf("gobdecode: could not unmarshal "+
			"configuration: %v", err)
	}
	if err := dec.Decode(&s.stepNum); err != nil {
		return fmt.Errorf("gobdecode: could not decode step number: %v", err)
	}

	return nil
}

// Config implements a schedule configuration, describing the step size
// of a solver as a function of the training step.
type Config interface {
	// At returns the step size after step training steps
	At(step int) float64

	// ValidType returns whether a specific Schedule type can be
	// created with the Config
	ValidType(Type) bool
}
