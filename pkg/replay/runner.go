package replay

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
	"github.com/decker502/shatterdial/pkg/game"
	"github.com/decker502/shatterdial/pkg/systems"
)

// Epoch 虚拟时钟起点
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// StepResult 一个步骤结束时的状态
type StepResult struct {
	Index     int
	Label     string
	Frame     int
	Category  components.Category
	Damage    float64
	Cracks    int
	Particles int
	Cues      []components.Cue
	Failures  []string
}

// Result 一次回放的结果
type Result struct {
	Name  string
	Seed  int64
	Steps []StepResult
	Final components.Snapshot
}

// Passed 所有断言是否通过
func (r *Result) Passed() bool {
	return len(r.Failures()) == 0
}

// Failures 汇总所有断言失败
func (r *Result) Failures() []string {
	var out []string
	for _, s := range r.Steps {
		for _, f := range s.Failures {
			out = append(out, fmt.Sprintf("step %d (%s): %s", s.Index, s.Label, f))
		}
	}
	return out
}

// Run 在虚拟时钟上执行脚本
//
// 参数:
//   - script: 回放脚本
//   - base: 基础配置，脚本的 config 覆盖项叠加在它的副本上
//
// 返回:
//   - *Result: 每一步的状态和断言结果
//   - error: 配置或按键无效时返回错误；断言失败不算错误
func Run(script *Script, base *config.DestructionConfig) (*Result, error) {
	cfg, err := script.ApplyConfig(base)
	if err != nil {
		return nil, err
	}

	frame := time.Duration(script.FrameMs) * time.Millisecond
	system := systems.NewDestructionSystem(cfg, rand.New(rand.NewSource(script.Seed)), Epoch)

	var cues []components.Cue
	recorder := game.FeedbackFunc(func(cue components.Cue) {
		cues = append(cues, cue)
	})
	engine := game.NewEngine(system, nil, recorder, nil)

	result := &Result{Name: script.Name, Seed: script.Seed}
	frames := 0
	var snap components.Snapshot
	tick := func(delta int, button components.ButtonEvent) {
		frames++
		snap = engine.Apply(Epoch.Add(time.Duration(frames)*frame), delta, button)
	}

	log.Printf("[Replay] Running %q (seed %d, %d steps)", script.Name, script.Seed, len(script.Steps))
	for i, step := range script.Steps {
		button, err := parseButton(step.Button)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		cues = nil

		repeat := step.Repeat
		if repeat == 0 {
			repeat = 1
		}
		for r := 0; r < repeat; r++ {
			tick(step.Rotate, button)
			for w := 0; w < step.Wait; w++ {
				tick(0, components.ButtonNone)
			}
		}

		sr := StepResult{
			Index:     i,
			Label:     step.Label,
			Frame:     frames,
			Category:  snap.Category,
			Damage:    snap.Damage,
			Cracks:    len(snap.Cracks),
			Particles: len(snap.Particles),
			Cues:      append([]components.Cue(nil), cues...),
		}
		if sr.Label == "" {
			sr.Label = describe(step)
		}
		if step.Expect != nil {
			sr.Failures = step.Expect.check(sr)
		}
		result.Steps = append(result.Steps, sr)
	}
	result.Final = snap
	return result, nil
}

func (e *Expectation) check(sr StepResult) []string {
	var failures []string
	if e.Category != "" && sr.Category.String() != e.Category {
		failures = append(failures, fmt.Sprintf("expected category %s, got %s", e.Category, sr.Category))
	}
	if e.Damage != nil && !within(*e.Damage, sr.Damage) {
		failures = append(failures, fmt.Sprintf("expected damage in %s, got %.4f", e.Damage, sr.Damage))
	}
	if e.Cracks != nil && !within(*e.Cracks, float64(sr.Cracks)) {
		failures = append(failures, fmt.Sprintf("expected cracks in %s, got %d", e.Cracks, sr.Cracks))
	}
	if e.Particles != nil && !within(*e.Particles, float64(sr.Particles)) {
		failures = append(failures, fmt.Sprintf("expected particles in %s, got %d", e.Particles, sr.Particles))
	}
	if e.Cue != "" && !hasCue(sr.Cues, e.Cue) {
		failures = append(failures, fmt.Sprintf("expected cue %s, got %s", e.Cue, cueList(sr.Cues)))
	}
	if e.NoCue != "" && hasCue(sr.Cues, e.NoCue) {
		failures = append(failures, fmt.Sprintf("unexpected cue %s", e.NoCue))
	}
	return failures
}

func within(r config.Range, v float64) bool {
	return v >= r.Min && v <= r.Max
}

func hasCue(cues []components.Cue, name string) bool {
	for _, c := range cues {
		if c.String() == name || c.Kind.String() == name {
			return true
		}
	}
	return false
}

func cueList(cues []components.Cue) string {
	if len(cues) == 0 {
		return "none"
	}
	names := make([]string, len(cues))
	for i, c := range cues {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}

func describe(s Step) string {
	var parts []string
	if s.Rotate != 0 {
		parts = append(parts, fmt.Sprintf("rotate %+d", s.Rotate))
	}
	if s.Button != "" && s.Button != "none" {
		parts = append(parts, s.Button+" press")
	}
	if s.Wait > 0 {
		parts = append(parts, fmt.Sprintf("wait %d", s.Wait))
	}
	if s.Repeat > 1 {
		parts = append(parts, fmt.Sprintf("x%d", s.Repeat))
	}
	if len(parts) == 0 {
		return "tick"
	}
	return strings.Join(parts, ", ")
}

// WriteSummary 输出逐步摘要
func (r *Result) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "replay %q seed=%d\n", r.Name, r.Seed)
	for _, s := range r.Steps {
		status := "ok"
		if len(s.Failures) > 0 {
			status = "FAIL"
		}
		fmt.Fprintf(w, "  %3d  frame %-6d %-24s %-13s %5.1f%%  cracks=%-4d particles=%-4d cues=%s  %s\n",
			s.Index, s.Frame, s.Label, s.Category, s.Damage*100, s.Cracks, s.Particles, cueList(s.Cues), status)
		for _, f := range s.Failures {
			fmt.Fprintf(w, "       - %s\n", f)
		}
	}
	fmt.Fprintf(w, "final: %s damage=%.4f cracks=%d particles=%d\n",
		r.Final.Category, r.Final.Damage, len(r.Final.Cracks), len(r.Final.Particles))
}
