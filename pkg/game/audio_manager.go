package game

import (
	"log"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/decker502/shatterdial/internal/tone"
	"github.com/decker502/shatterdial/pkg/components"
)

// cueKey 音效缓存键（强度量化到 0.1）
type cueKey struct {
	kind      components.CueKind
	category  components.Category
	intensity int
	duration  time.Duration
}

// AudioManager 音频和震动反馈
// 职责：
//   - 把状态机发出的 Cue 合成为音效并通过 ebiten audio 播放
//   - 在支持的平台上触发震动
//   - 从 SettingsManager 读取音量和开关
//
// 实现 systems.FeedbackDispatcher，Emit 从不阻塞。
type AudioManager struct {
	audioContext    *audio.Context    // 可为 nil（无声模式）
	settingsManager *SettingsManager  // 可为 nil（使用默认设置）
	rng             *rand.Rand        // 噪声音效的随机源
	pcmCache        map[cueKey][]byte // 合成结果缓存
	active          []*audio.Player   // 正在播放的播放器，播放结束前保持引用
	vibrate         func(duration time.Duration, magnitude float64)
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - ctx: ebiten 音频上下文，采样率应为 tone.SampleRate；为 nil 时只震动
//   - sm: SettingsManager 实例（可为 nil）
func NewAudioManager(ctx *audio.Context, sm *SettingsManager) *AudioManager {
	return &AudioManager{
		audioContext:    ctx,
		settingsManager: sm,
		rng:             rand.New(rand.NewSource(1)),
		pcmCache:        make(map[cueKey][]byte),
		vibrate:         ebitenVibrate,
	}
}

// Emit 实现 systems.FeedbackDispatcher
func (am *AudioManager) Emit(cue components.Cue) {
	settings := am.settings()
	if settings.HapticsEnabled {
		am.Vibrate(cue, settings.HapticStrength)
	}
	if settings.SoundEnabled {
		am.PlayCue(cue)
	}
}

// PlayCue 播放反馈音效
//
// 返回：
//   - bool: 是否成功播放
func (am *AudioManager) PlayCue(cue components.Cue) bool {
	if am.audioContext == nil {
		return false
	}

	pcm := am.cuePCM(cue)
	if len(pcm) == 0 {
		return false
	}

	am.pruneFinished()

	player := am.audioContext.NewPlayerFromBytes(pcm)
	player.SetVolume(am.settings().SoundVolume)
	player.Play()
	am.active = append(am.active, player)
	return true
}

// pruneFinished 释放已播放完的播放器
func (am *AudioManager) pruneFinished() {
	kept := am.active[:0]
	for _, p := range am.active {
		if p.IsPlaying() {
			kept = append(kept, p)
			continue
		}
		if err := p.Close(); err != nil {
			log.Printf("[AudioManager] Warning: Failed to close player: %v", err)
		}
	}
	am.active = kept
}

// Vibrate 按反馈事件触发震动
// 只有进入破坏阶段、重建和重置会震动，强度随 Cue 强度缩放
func (am *AudioManager) Vibrate(cue components.Cue, strength float64) {
	if am.vibrate == nil || strength <= 0 {
		return
	}

	var duration time.Duration
	switch cue.Kind {
	case components.CueEnter:
		if cue.Category == components.CategoryPristine {
			return
		}
		duration = 30 * time.Millisecond
		if cue.Category.IsShatter() {
			duration = 120 * time.Millisecond
		}
	case components.CueRebuild, components.CueFullReset:
		duration = 200 * time.Millisecond
	case components.CueStepBack:
		duration = 15 * time.Millisecond
	default:
		return
	}

	am.vibrate(duration, strength*(0.3+0.7*cue.Intensity))
}

// cuePCM 获取或合成音效
func (am *AudioManager) cuePCM(cue components.Cue) []byte {
	key := cueKey{
		kind:      cue.Kind,
		category:  cue.Category,
		intensity: int(cue.Intensity*10 + 0.5),
		duration:  cue.Duration,
	}
	if pcm, ok := am.pcmCache[key]; ok {
		return pcm
	}

	quantized := cue
	quantized.Intensity = float64(key.intensity) / 10
	pcm := tone.CuePCM(quantized, 1, am.rng)
	am.pcmCache[key] = pcm
	log.Printf("[AudioManager] Synthesized %s (%d bytes)", cue, len(pcm))
	return pcm
}

// settings 当前设置；没有 SettingsManager 时使用默认值
func (am *AudioManager) settings() *FeedbackSettings {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings()
	}
	return DefaultSettings()
}

// ebitenVibrate 移动端震动（桌面端 ebiten 会忽略）
func ebitenVibrate(duration time.Duration, magnitude float64) {
	ebiten.Vibrate(&ebiten.VibrateOptions{
		Duration:  duration,
		Magnitude: magnitude,
	})
}
