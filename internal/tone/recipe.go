package tone

import (
	"math/rand"
	"time"

	"github.com/gopxl/beep"

	"github.com/decker502/shatterdial/pkg/components"
)

// Recipe 一个反馈音效：若干并行的音轨，每条音轨是顺序播放的音符
type Recipe struct {
	Layers [][]Note
}

// Duration 最长音轨的时长
func (r Recipe) Duration() time.Duration {
	var longest time.Duration
	for _, layer := range r.Layers {
		var d time.Duration
		for _, n := range layer {
			d += n.Duration
		}
		if d > longest {
			longest = d
		}
	}
	return longest
}

// Streamer 把配方渲染为音频流
//
// 参数:
//   - rate: 采样率
//   - volume: 总音量 0.0 ~ 1.0
//   - rng: 噪声音符使用的随机源
func (r Recipe) Streamer(rate beep.SampleRate, volume float64, rng *rand.Rand) beep.Streamer {
	layers := make([]beep.Streamer, 0, len(r.Layers))
	for _, layer := range r.Layers {
		notes := make([]beep.Streamer, 0, len(layer))
		for _, n := range layer {
			notes = append(notes, n.streamer(rate, rng))
		}
		layers = append(layers, beep.Seq(notes...))
	}
	return newVolume(beep.Mix(layers...), volume)
}

// 各阶段裂纹声的基础音高，破坏越重音高越低
var crackPitch = map[components.Category]float64{
	components.CategoryTiny:         1320,
	components.CategorySmall:        1100,
	components.CategoryMedium:       880,
	components.CategoryLarge:        660,
	components.CategoryShatter:      440,
	components.CategoryHeavyShatter: 330,
	components.CategorySilence:      110,
}

// ForCue 返回反馈事件对应的音效配方
func ForCue(cue components.Cue) Recipe {
	gain := 0.4 + 0.6*cue.Intensity
	length := cue.Duration
	if length <= 0 {
		length = 120 * time.Millisecond
	}

	switch cue.Kind {
	case components.CueEnter:
		return enterRecipe(cue.Category, length, gain)

	case components.CueRebuild:
		// 上行琶音
		step := length / 4
		return Recipe{Layers: [][]Note{{
			sine(220, step, gain*0.6),
			sine(277, step, gain*0.7),
			sine(330, step, gain*0.8),
			sine(440, step, gain),
		}}}

	case components.CueRecovery:
		return chime(660, length, gain)

	case components.CueRestored:
		r := chime(880, length, gain)
		r.Layers[0] = append(r.Layers[0], sine(1320, length/3, gain*0.5))
		return r

	case components.CueStepBack:
		return Recipe{Layers: [][]Note{{
			{Freq: 1200, Duration: 15 * time.Millisecond, Wave: WaveSquare, Release: 5 * time.Millisecond, Gain: gain * 0.5},
		}}}

	case components.CueFullReset:
		step := length / 3
		return Recipe{Layers: [][]Note{{
			sine(880, step, gain),
			sine(660, step, gain*0.8),
			sine(440, step, gain*0.6),
		}}}
	}

	return Recipe{}
}

// enterRecipe 进入破坏阶段：噪声爆裂 + 随阶段降低的音高
func enterRecipe(cat components.Category, length time.Duration, gain float64) Recipe {
	if cat == components.CategoryPristine {
		return Recipe{Layers: [][]Note{{sine(660, length/2, gain*0.4)}}}
	}

	pitch, ok := crackPitch[cat]
	if !ok {
		return Recipe{}
	}

	burst := length / 3
	if cat.IsShatter() {
		burst = length
	}

	noise := Note{Duration: burst, Wave: WaveNoise, Attack: time.Millisecond, Release: burst / 2, Gain: gain * 0.7}
	body := Note{Freq: pitch, Duration: length, Wave: WaveSaw, Attack: 2 * time.Millisecond, Release: length / 2, Gain: gain * 0.4}
	if cat == components.CategorySilence {
		body.Wave = WaveSine
		body.Duration = length * 2
		body.Release = length
	}

	return Recipe{Layers: [][]Note{{noise}, {body}}}
}

func sine(freq float64, d time.Duration, gain float64) Note {
	return Note{Freq: freq, Duration: d, Wave: WaveSine, Attack: 3 * time.Millisecond, Release: d / 2, Gain: gain}
}

// chime 基音 + 八度泛音
func chime(freq float64, d time.Duration, gain float64) Recipe {
	return Recipe{Layers: [][]Note{
		{{Freq: freq, Duration: d, Wave: WaveSine, Attack: 2 * time.Millisecond, Release: d * 3 / 4, Gain: gain * 0.7}},
		{{Freq: freq * 2, Duration: d, Wave: WaveSine, Attack: 2 * time.Millisecond, Release: d / 3, Gain: gain * 0.3}},
	}}
}
