package report_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/goppo/report"
)

func TestHistory(t *testing.T) {
	history := report.NewHistory()
	history.Report("actor", "train_loss", 1, 0.5)
	history.Report("actor", "train_loss", 2, 0.25)
	history.Report("critic", "train_loss", 1, 3.0)
	history.Report("actor", "lr", 1, 0.001)

	loss := history.Metric("actor", "train_loss")
	if len(loss) != 2 {
		t.Fatalf("metric: expected 2 records, got %v", len(loss))
	}
	if loss[0].Step != 1 || loss[0].Value != 0.5 {
		t.Errorf("metric: expected record {1 0.5}, got %v", loss[0])
	}
	if loss[1].Step != 2 || loss[1].Value != 0.25 {
		t.Errorf("metric: expected record {2 0.25}, got %v", loss[1])
	}

	if critic := history.Metric("critic", "train_loss"); len(critic) != 1 {
		t.Errorf("metric: expected 1 critic record, got %v", len(critic))
	}
	if missing := history.Metric("critic", "lr"); len(missing) != 0 {
		t.Errorf("metric: expected no records, got %v", len(missing))
	}
}

func TestHistorySaveLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "history.bin")

	history := report.NewHistory()
	for step := 1; step <= 5; step++ {
		history.Report("actor", "train_loss", step, 1.0/float64(step))
	}
	if err := history.Save(filename); err != nil {
		t.Fatal(err)
	}

	loaded, err := report.Load(filename)
	if err != nil {
		t.Fatal(err)
	}

	want := history.Metric("actor", "train_loss")
	got := loaded.Metric("actor", "train_loss")
	if len(got) != len(want) {
		t.Fatalf("load: expected %v records, got %v", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("load: record %v should be %v, got %v", i, want[i],
				got[i])
		}
	}

	if _, err := os.Stat(filename); err != nil {
		t.Errorf("save: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := report.Load(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Error("load: expected error for missing file")
	}
}
