package replay

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		errContains string
	}{
		{"minimal", "steps:\n  - rotate: 1\n", ""},
		{"no steps", "name: empty\n", "no steps"},
		{"bad button", "steps:\n  - button: double\n", "unknown button"},
		{"bad category", "steps:\n  - expect: {category: Broken}\n", "unknown category"},
		{"negative wait", "steps:\n  - wait: -1\n", "must be >= 0"},
		{"negative frame", "frameMs: -5\nsteps:\n  - rotate: 1\n", "frameMs"},
		{"bad yaml", "steps: [\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.yaml))
			if tt.errContains == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if s.FrameMs != DefaultFrameMs {
					t.Errorf("expected default frameMs %d, got %d", DefaultFrameMs, s.FrameMs)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("expected error containing %q, got %v", tt.errContains, err)
			}
		})
	}
}

func TestApplyConfig(t *testing.T) {
	s, err := Parse([]byte("config:\n  idleTimeoutMs: 500\n  cracks:\n    capacity: 10\nsteps:\n  - rotate: 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	base := config.DefaultDestructionConfig()
	cfg, err := s.ApplyConfig(base)
	if err != nil {
		t.Fatalf("ApplyConfig error: %v", err)
	}
	if cfg.IdleTimeoutMs != 500 || cfg.Cracks.Capacity != 10 {
		t.Errorf("overrides not applied: idle=%d capacity=%d", cfg.IdleTimeoutMs, cfg.Cracks.Capacity)
	}
	if cfg.Cracks.MaxGeneration != base.Cracks.MaxGeneration {
		t.Error("expected untouched fields to keep base values")
	}
	if base.IdleTimeoutMs != 8000 {
		t.Error("base config must not be modified")
	}

	bad, _ := Parse([]byte("config:\n  increaseRate: -1\nsteps:\n  - rotate: 1\n"))
	if _, err := bad.ApplyConfig(base); err == nil {
		t.Error("expected invalid override to be rejected")
	}
}

func TestRun_BundledScripts(t *testing.T) {
	paths, err := filepath.Glob("../../data/replays/*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no bundled replay scripts found")
	}

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			script, err := Load(path)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			result, err := Run(script, config.DefaultDestructionConfig())
			if err != nil {
				t.Fatalf("Run error: %v", err)
			}
			if !result.Passed() {
				var buf bytes.Buffer
				result.WriteSummary(&buf)
				t.Errorf("replay failed:\n%s", buf.String())
			}
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	script, err := Parse([]byte(`
seed: 99
steps:
  - rotate: 50
    wait: 20
  - rotate: 5
    wait: 40
  - button: short
    wait: 5
`))
	if err != nil {
		t.Fatal(err)
	}

	a, err := Run(script, config.DefaultDestructionConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(script, config.DefaultDestructionConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical results for identical scripts")
	}
	if a.Steps[1].Frame != 1+20+1+40 {
		t.Errorf("expected frame %d after step 1, got %d", 62, a.Steps[1].Frame)
	}
}

func TestRun_ReportsFailures(t *testing.T) {
	script, err := Parse([]byte(`
name: wrong
steps:
  - rotate: 20
    expect: {category: Large, damage: "[0.9 1]", cue: Restored, noCue: Enter}
`))
	if err != nil {
		t.Fatal(err)
	}
	result, err := Run(script, config.DefaultDestructionConfig())
	if err != nil {
		t.Fatal(err)
	}
	if result.Passed() {
		t.Fatal("expected failures")
	}
	if got := len(result.Failures()); got != 4 {
		t.Errorf("expected 4 failures, got %d: %v", got, result.Failures())
	}
	if result.Final.Category != components.CategoryMedium {
		t.Errorf("expected final category Medium, got %s", result.Final.Category)
	}

	var buf bytes.Buffer
	result.WriteSummary(&buf)
	if !strings.Contains(buf.String(), "FAIL") || !strings.Contains(buf.String(), "rotate +20") {
		t.Errorf("unexpected summary:\n%s", buf.String())
	}
}

// TestRun_RejectsUnknownButton 测试未经 Parse 校验的脚本含未知按键时报错
func TestRun_RejectsUnknownButton(t *testing.T) {
	script := &Script{
		Name:    "handmade",
		FrameMs: 16,
		Steps: []Step{
			{Rotate: 5},
			{Button: "double"},
		},
	}
	result, err := Run(script, config.DefaultDestructionConfig())
	if err == nil {
		t.Fatalf("expected error, got result %+v", result)
	}
	if !strings.Contains(err.Error(), "step 1") || !strings.Contains(err.Error(), "double") {
		t.Errorf("unexpected error: %v", err)
	}
}
