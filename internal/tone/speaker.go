package tone

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/decker502/shatterdial/pkg/components"
)

// Speaker 通过系统扬声器直接播放反馈音效（终端前端使用）
//
// 实现 systems.FeedbackDispatcher。
type Speaker struct {
	mu      sync.Mutex
	volume  float64
	enabled bool
	seed    int64
	played  int64

	play func(beep.Streamer)
}

// NewSpeaker 初始化扬声器
//
// 参数:
//   - volume: 音量 0.0 ~ 1.0
//   - seed: 噪声音符的随机种子，每个音效派生独立的随机源
//
// 返回:
//   - error: 音频设备不可用时返回错误，调用方可以选择静音运行
func NewSpeaker(volume float64, seed int64) (*Speaker, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}
	return newSpeaker(volume, seed, func(s beep.Streamer) { speaker.Play(s) }), nil
}

func newSpeaker(volume float64, seed int64, play func(beep.Streamer)) *Speaker {
	return &Speaker{
		volume:  volume,
		enabled: true,
		seed:    seed,
		play:    play,
	}
}

// Emit 播放反馈事件对应的音效，没有音效的事件直接忽略
func (s *Speaker) Emit(cue components.Cue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.volume <= 0 {
		return
	}
	recipe := ForCue(cue)
	if len(recipe.Layers) == 0 {
		return
	}

	// 音频流在扬声器 goroutine 上读取，不能共享随机源
	s.played++
	rng := rand.New(rand.NewSource(s.seed + s.played))
	s.play(recipe.Streamer(SampleRate, s.volume, rng))
}

// SetEnabled 开关声音
func (s *Speaker) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
	log.Printf("[Speaker] Sound enabled: %v", enabled)
}

// Enabled 返回声音是否开启
func (s *Speaker) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Played 返回已播放的音效数量
func (s *Speaker) Played() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played
}

// Close 停止所有播放并关闭扬声器
func (s *Speaker) Close() {
	speaker.Clear()
	speaker.Close()
}
