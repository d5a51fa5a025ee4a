package checkpointer_test

import (
	"reflect"
	"testing"

	"github.com/samuelfneumann/goppo/experiment/checkpointer"
	"github.com/samuelfneumann/goppo/timestep"
)

// recordingSaver records the directories it was asked to checkpoint to
type recordingSaver struct {
	dirs []string
}

func (r *recordingSaver) SaveCheckpoint(dir string) error {
	r.dirs = append(r.dirs, dir)
	return nil
}

func TestNStepCheckpoint(t *testing.T) {
	saver := &recordingSaver{}
	check, err := checkpointer.NewNStep(3, saver,
		checkpointer.DirEnumerator(0, "check"))
	if err != nil {
		t.Fatalf("could not create checkpointer: %v", err)
	}

	for i := 0; i < 7; i++ {
		if err := check.Checkpoint(timestep.TimeStep{}); err != nil {
			t.Fatalf("could not checkpoint: %v", err)
		}
	}

	expected := []string{"check1", "check2"}
	if !reflect.DeepEqual(saver.dirs, expected) {
		t.Errorf("incorrect checkpoint directories \n\twant(%v)"+
			"\n\thave(%v)", expected, saver.dirs)
	}
}

func TestNStepIllegalInterval(t *testing.T) {
	if _, err := checkpointer.NewNStep(0, &recordingSaver{},
		checkpointer.DirEnumerator(0, "check")); err == nil {
		t.Error("expected an error for a non-positive interval")
	}
}
