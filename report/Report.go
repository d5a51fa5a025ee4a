// Package report implements the tracking of scalar training metrics.
// Training code reports metrics such as losses and learning rates
// through a Reporter; the History implementation accumulates them so
// that learning curves can be saved to disk and analyzed after a run.
package report

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Reporter records the value of a scalar metric, measured for a named
// model at a training step
type Reporter interface {
	Report(model, metric string, step int, value float64)
}

// Record is a single scalar metric measurement
type Record struct {
	Step  int
	Value float64
}

// History accumulates scalar training metrics over the course of
// training. Metrics are grouped per model and metric name, e.g. the
// training loss of the model "actor" is a separate series from the
// training loss of the model "critic".
type History struct {
	records map[string][]Record
}

// NewHistory returns a new, empty History
func NewHistory() *History {
	return &History{records: make(map[string][]Record)}
}

// key returns the series key of a metric of a model
func key(model, metric string) string {
	return model + "/" + metric
}

// Report records the value of a metric of a model at a training step
func (h *History) Report(model, metric string, step int, value float64) {
	k := key(model, metric)
	h.records[k] = append(h.records[k], Record{Step: step, Value: value})
}

// Metric returns the recorded series of a metric of a model, in the
// order the values were reported
func (h *History) Metric(model, metric string) []Record {
	return h.records[key(model, metric)]
}

// Save saves the accumulated metrics to the file at filename
func (h *History) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(h.records); err != nil {
		return fmt.Errorf("save: could not encode metrics: %v", err)
	}
	return nil
}

// Load returns the History saved at filename
func Load(filename string) (*History, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("load: could not open save file: %v", err)
	}
	defer file.Close()

	var records map[string][]Record
	if err := gob.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("load: could not decode metrics: %v", err)
	}
	return &History{records: records}, nil
}
