// Package tone 将反馈事件合成为短音效
//
// 只依赖 beep 的流式接口，输出可以交给 beep speaker 直接播放，
// 也可以编码成 16 位 PCM 交给 ebiten audio 播放。
package tone

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// SampleRate 与 ebiten audio context 一致
const SampleRate = beep.SampleRate(48000)

// Wave 振荡器波形
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator 产生定长的原始波形
type oscillator struct {
	freq     float64
	phase    float64
	position int
	duration int
	wave     Wave
	rate     beep.SampleRate
	rng      *rand.Rand
}

func newOscillator(freq float64, duration time.Duration, wave Wave, rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      rng,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope 线性起音/释音包络
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.attackSamples > 0 && e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if e.releaseSamples > 0 && e.position >= releaseStart {
			vol = math.Min(vol, float64(e.totalSamples-e.position)/float64(e.releaseSamples))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume 线性音量；0 时静音（math.Log2(0) 为 -Inf）
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Note 单个音符
type Note struct {
	Freq     float64
	Duration time.Duration
	Wave     Wave
	Attack   time.Duration
	Release  time.Duration
	Gain     float64
}

// streamer 构建音符的音频流
func (n Note) streamer(rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	var src beep.Streamer
	if n.Wave == WaveSine && n.Freq > 0 {
		if sine, err := generators.SineTone(rate, n.Freq); err == nil {
			src = beep.Take(rate.N(n.Duration), sine)
		}
	}
	if src == nil {
		src = newOscillator(n.Freq, n.Duration, n.Wave, rate, rng)
	}

	shaped := newEnvelope(src, n.Duration, n.Attack, n.Release, rate)
	return newVolume(shaped, n.Gain)
}
