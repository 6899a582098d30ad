package game

import (
	"context"
	"log"
	"time"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/systems"
)

// Engine 单线程主循环：采样输入 → 状态机结算 → 渲染 → 分发反馈
//
// 渲染器和反馈分发器只看到帧末快照；分发器的 panic 会被捕获并记录，
// 不会影响状态机。
type Engine struct {
	system   *systems.DestructionSystem
	input    systems.InputAdapter
	feedback systems.FeedbackDispatcher
	renderer systems.Renderer

	ticks        uint64
	inputErrors  uint64
	lastSnapshot components.Snapshot
}

// NewEngine 创建主循环
//
// 参数:
//   - system: 破坏状态机
//   - input: 输入适配器，可为 nil（视为无输入）
//   - feedback: 反馈分发器，可为 nil
//   - renderer: 渲染器，可为 nil
func NewEngine(system *systems.DestructionSystem, input systems.InputAdapter, feedback systems.FeedbackDispatcher, renderer systems.Renderer) *Engine {
	return &Engine{
		system:   system,
		input:    input,
		feedback: feedback,
		renderer: renderer,
	}
}

// System 返回状态机
func (e *Engine) System() *systems.DestructionSystem {
	return e.system
}

// Ticks 已执行的帧数
func (e *Engine) Ticks() uint64 {
	return e.ticks
}

// InputErrors 采样失败次数
func (e *Engine) InputErrors() uint64 {
	return e.inputErrors
}

// LastSnapshot 最近一帧的快照
func (e *Engine) LastSnapshot() components.Snapshot {
	return e.lastSnapshot
}

// Step 执行一帧
func (e *Engine) Step(now time.Time) components.Snapshot {
	delta, button := e.sample()
	return e.Apply(now, delta, button)
}

// Apply 用给定输入执行一帧（回放和测试直接调用）
func (e *Engine) Apply(now time.Time, delta int, button components.ButtonEvent) components.Snapshot {
	snapshot := e.system.Update(now, delta, button)
	e.ticks++
	e.lastSnapshot = snapshot

	if e.renderer != nil {
		e.renderer.Render(snapshot)
	}
	for _, cue := range snapshot.Cues {
		e.dispatch(cue)
	}
	return snapshot
}

// Run 以固定频率执行帧直到 ctx 取消
//
// jobs 中的任务（如终端事件处理）在同一个 goroutine 上、两帧之间执行；
// jobs 可为 nil，被关闭后不再读取。
func (e *Engine) Run(ctx context.Context, interval time.Duration, jobs <-chan func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[Engine] Running at %v per tick", interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Engine] Stopped after %d ticks", e.ticks)
			return ctx.Err()
		case job, ok := <-jobs:
			if !ok {
				jobs = nil
				continue
			}
			job()
		case now := <-ticker.C:
			e.Step(now)
		}
	}
}

// sample 读取输入；失败按零输入处理
func (e *Engine) sample() (int, components.ButtonEvent) {
	if e.input == nil {
		return 0, components.ButtonNone
	}

	delta, err := e.input.SampleRotation()
	if err != nil {
		e.inputError("rotation", err)
		delta = 0
	}

	button, err := e.input.SampleButton()
	if err != nil {
		e.inputError("button", err)
		button = components.ButtonNone
	}
	return delta, button
}

func (e *Engine) inputError(what string, err error) {
	e.inputErrors++
	// 避免持续故障刷屏
	if e.inputErrors <= 3 || e.inputErrors%600 == 0 {
		log.Printf("[Engine] Warning: %s sample failed (%d total): %v", what, e.inputErrors, err)
	}
}

// dispatch 即发即忘，分发器的 panic 不会传播
func (e *Engine) dispatch(cue components.Cue) {
	if e.feedback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] Warning: feedback dispatcher panicked on %s: %v", cue, r)
		}
	}()
	e.feedback.Emit(cue)
}

// FeedbackFunc 函数适配为 FeedbackDispatcher
type FeedbackFunc func(cue components.Cue)

// Emit 实现 systems.FeedbackDispatcher
func (f FeedbackFunc) Emit(cue components.Cue) {
	f(cue)
}

// MultiFeedback 依次分发给多个分发器（如声音 + 震动）
type MultiFeedback []systems.FeedbackDispatcher

// Emit 实现 systems.FeedbackDispatcher
func (m MultiFeedback) Emit(cue components.Cue) {
	for _, d := range m {
		if d != nil {
			d.Emit(cue)
		}
	}
}
