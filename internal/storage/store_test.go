package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/satsim/internal/config"
	"github.com/san-kum/satsim/internal/dynamo"
	"github.com/san-kum/satsim/internal/forecast"
)

func testReport() *forecast.Report {
	return &forecast.Report{
		Mode:    forecast.ScanAll,
		Horizon: 50,
		Events: []dynamo.Event{
			{Kind: dynamo.KindCollision, A: "A", B: "B", Step: 1, Distance: 4.8},
			{Kind: dynamo.KindCollision, A: "A", B: "B", Step: 2, Distance: 4.6},
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	sc := config.GetPreset("headon")
	runID, err := st.Save(sc, testReport())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Scenario != "headon" {
		t.Errorf("expected scenario 'headon', got '%s'", meta.Scenario)
	}
	if meta.Horizon != 50 || meta.Events != 2 || meta.Bodies != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Mode != "scan-all" {
		t.Errorf("expected mode scan-all, got %s", meta.Mode)
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		t.Fatalf("load events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1] != testReport().Events[1] {
		t.Errorf("event mismatch: %+v", events[1])
	}

	loaded, err := st.LoadScenario(runID)
	if err != nil {
		t.Fatalf("load scenario failed: %v", err)
	}
	bodies, err := loaded.Build()
	if err != nil {
		t.Fatalf("stored scenario does not build: %v", err)
	}
	if len(bodies) != 2 || bodies[1].ID != "B" {
		t.Errorf("unexpected bodies %v", bodies)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	for _, name := range []string{"headon", "canvas"} {
		if _, err := st.Save(config.GetPreset(name), &forecast.Report{Horizon: 10}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Scenario != "headon" {
		t.Errorf("expected oldest first, got %s", runs[0].Scenario)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(config.GetPreset("headon"), testReport())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "events.csv", "scenario.yaml"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.GetPreset("headon"), testReport())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var out struct {
		ID         string         `json:"id"`
		Events     int            `json:"events"`
		Collisions []dynamo.Event `json:"collisions"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.ID != runID || out.Events != 2 || len(out.Collisions) != 2 {
		t.Errorf("unexpected export %+v", out)
	}
}
