package components

import "time"

// Snapshot 每帧结束时的只读状态快照
//
// 切片均为拷贝，渲染器和反馈分发器持有快照不会看到后续帧的修改。
type Snapshot struct {
	Category     Category
	Previous     Category
	Damage       float64
	Cracks       []CrackComponent
	Particles    []ParticleComponent
	StateElapsed time.Duration // 进入当前阶段后经过的时间
	IdleFor      time.Duration // 距离最后一次输入的时间
	Cues         []Cue         // 本帧发出的反馈事件
}
