package tone

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/decker502/shatterdial/pkg/components"
)

func allCues() []components.Cue {
	cues := []components.Cue{
		{Kind: components.CueRebuild, Category: components.CategoryRebuilding, Intensity: 1, Duration: 600 * time.Millisecond},
		{Kind: components.CueRecovery, Category: components.CategoryRecovering, Intensity: 0.5, Duration: 600 * time.Millisecond},
		{Kind: components.CueRestored, Category: components.CategoryPristine, Intensity: 0.2, Duration: 600 * time.Millisecond},
		{Kind: components.CueStepBack, Category: components.CategorySmall, Intensity: 0.4, Duration: 120 * time.Millisecond},
		{Kind: components.CueFullReset, Category: components.CategoryPristine, Intensity: 1, Duration: 600 * time.Millisecond},
	}
	for _, cat := range components.DestructionCategories() {
		cues = append(cues, components.Cue{Kind: components.CueEnter, Category: cat, Intensity: 0.5, Duration: 120 * time.Millisecond})
	}
	return cues
}

// TestForCue 每种反馈事件都有非空音效
func TestForCue(t *testing.T) {
	for _, cue := range allCues() {
		t.Run(cue.String(), func(t *testing.T) {
			r := ForCue(cue)
			if len(r.Layers) == 0 {
				t.Fatal("expected at least one layer")
			}
			if r.Duration() <= 0 {
				t.Errorf("expected positive duration, got %v", r.Duration())
			}
			for i, layer := range r.Layers {
				for j, n := range layer {
					if n.Gain < 0 || n.Gain > 1 {
						t.Errorf("layer %d note %d gain %.2f outside [0, 1]", i, j, n.Gain)
					}
				}
			}
		})
	}
}

// TestForCue_PitchFallsWithSeverity 破坏越重裂纹声越低
func TestForCue_PitchFallsWithSeverity(t *testing.T) {
	prev := 0.0
	for _, cat := range components.DestructionCategories()[1:] {
		r := ForCue(components.Cue{Kind: components.CueEnter, Category: cat, Duration: 100 * time.Millisecond})
		pitch := r.Layers[1][0].Freq
		if prev != 0 && pitch >= prev {
			t.Errorf("%s pitch %.0f should be below previous %.0f", cat, pitch, prev)
		}
		prev = pitch
	}
}

// TestForCue_Unknown 未知事件没有音效
func TestForCue_Unknown(t *testing.T) {
	if r := ForCue(components.Cue{Kind: components.CueKind(99)}); len(r.Layers) != 0 {
		t.Errorf("expected empty recipe, got %d layers", len(r.Layers))
	}
	if pcm := CuePCM(components.Cue{Kind: components.CueKind(99)}, 1, rand.New(rand.NewSource(1))); pcm != nil {
		t.Errorf("expected nil PCM, got %d bytes", len(pcm))
	}
}

// TestCuePCM 输出长度与音效时长一致
func TestCuePCM(t *testing.T) {
	cue := components.Cue{Kind: components.CueStepBack, Intensity: 1}
	pcm := CuePCM(cue, 1, rand.New(rand.NewSource(1)))

	frames := SampleRate.N(ForCue(cue).Duration())
	want := frames * 4
	if len(pcm)%4 != 0 {
		t.Fatalf("PCM length %d is not a whole number of stereo frames", len(pcm))
	}
	if diff := len(pcm) - want; diff < -2048 || diff > 2048 {
		t.Errorf("expected about %d bytes, got %d", want, len(pcm))
	}
	if bytes.Count(pcm, []byte{0}) == len(pcm) {
		t.Error("expected non-silent output")
	}
}

// TestCuePCM_Silent 音量为 0 时输出全零
func TestCuePCM_Silent(t *testing.T) {
	pcm := CuePCM(components.Cue{Kind: components.CueRecovery, Intensity: 1, Duration: 50 * time.Millisecond}, 0, rand.New(rand.NewSource(1)))
	if len(pcm) == 0 {
		t.Fatal("expected samples even when silent")
	}
	for i, b := range pcm {
		if b != 0 {
			t.Fatalf("byte %d = %d, expected silence", i, b)
		}
	}
}

// TestCuePCM_Deterministic 相同随机源得到相同噪声
func TestCuePCM_Deterministic(t *testing.T) {
	cue := components.Cue{Kind: components.CueEnter, Category: components.CategoryShatter, Intensity: 1, Duration: 80 * time.Millisecond}
	a := CuePCM(cue, 0.8, rand.New(rand.NewSource(9)))
	b := CuePCM(cue, 0.8, rand.New(rand.NewSource(9)))
	if !bytes.Equal(a, b) {
		t.Error("same seed produced different PCM")
	}
}

// TestEnvelope 起音从 0 开始，释音结束时接近 0
func TestEnvelope(t *testing.T) {
	rate := beep.SampleRate(1000)
	osc := newOscillator(0, 100*time.Millisecond, WaveSquare, rate, nil)
	env := newEnvelope(osc, 100*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, rate)

	buf := make([][2]float64, 200)
	n, _ := env.Stream(buf)
	if n != 100 {
		t.Fatalf("expected 100 samples, got %d", n)
	}
	if buf[0][0] != 0 {
		t.Errorf("attack should start at 0, got %.3f", buf[0][0])
	}
	if buf[50][0] != 1 {
		t.Errorf("sustain should be full volume, got %.3f", buf[50][0])
	}
	if buf[99][0] > 0.11 {
		t.Errorf("release should end near 0, got %.3f", buf[99][0])
	}
}

func TestSpeaker_Emit(t *testing.T) {
	var streams []beep.Streamer
	s := newSpeaker(0.5, 7, func(st beep.Streamer) { streams = append(streams, st) })

	s.Emit(components.Cue{Kind: components.CueEnter, Category: components.CategoryMedium, Intensity: 0.5})
	s.Emit(components.Cue{Kind: components.CueKind(99)})
	if len(streams) != 1 {
		t.Fatalf("expected 1 stream, got %d", len(streams))
	}
	if pcm := EncodePCM(streams[0]); len(pcm) == 0 {
		t.Error("expected non-empty stream")
	}

	s.SetEnabled(false)
	s.Emit(components.Cue{Kind: components.CueFullReset, Intensity: 1})
	if len(streams) != 1 || s.Played() != 1 {
		t.Errorf("expected muted speaker to skip cues, got %d streams", len(streams))
	}
}
