package fitnesslog_test

import (
	"path/filepath"
	"testing"

	"github.com/kilianp07/evopool/core/factory"
	core "github.com/kilianp07/evopool/core/fitnesslog"
	"github.com/kilianp07/evopool/infra/fitnesslog"
)

func TestBackendFactory(t *testing.T) {
	dir := t.TempDir()
	w, err := core.NewWriter([]factory.ModuleConfig{{Type: "file", Conf: map[string]any{"dir": dir}}})
	if err != nil {
		t.Fatalf("create file backend: %v", err)
	}
	if _, ok := w.(*fitnesslog.FileWriter); !ok {
		t.Fatalf("expected FileWriter, got %T", w)
	}

	w, err = core.NewWriter([]factory.ModuleConfig{
		{Type: "file", Conf: map[string]any{"dir": dir}},
		{Type: "sqlite", Conf: map[string]any{"path": filepath.Join(dir, "f.db")}},
		{Type: "jsonl", Conf: map[string]any{"path": filepath.Join(dir, "f.jsonl"), "max_size_mb": 2}},
	})
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := w.(*core.MultiWriter)
	if !ok || len(m.Writers) != 3 {
		t.Fatalf("expected MultiWriter with 3 writers, got %T", w)
	}
	if err := m.StartGeneration(0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestBackendFactory_BadConfig(t *testing.T) {
	_, err := core.NewWriter([]factory.ModuleConfig{{Type: "jsonl", Conf: map[string]any{"max_size_mb": "big"}}})
	if err == nil {
		t.Fatal("expected decode error")
	}
}
