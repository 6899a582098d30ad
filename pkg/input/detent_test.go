package input

import (
	"math"
	"testing"

	"github.com/decker502/shatterdial/pkg/components"
)

func TestDetentDecoder(t *testing.T) {
	d := NewDetentDecoder(1)

	steps := []struct {
		amount float64
		want   int
	}{
		{0.4, 0},
		{0.4, 0},
		{0.4, 1}, // 累计 1.2
		{-0.1, 0},
		{-1.2, -1}, // 余量 0.1 - 1.2 = -1.1
		{3, 2},     // -0.1 + 3 = 2.9
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}

	for i, s := range steps {
		if got := d.Add(s.amount); got != s.want {
			t.Errorf("step %d: Add(%v) = %d, expected %d", i, s.amount, got, s.want)
		}
	}

	d.Reset()
	if got := d.Add(0.9); got != 0 {
		t.Errorf("after Reset expected 0, got %d", got)
	}
}

// TestDetentDecoder_Angle 拖动一整圈产生 DetentsPerTurn 格
func TestDetentDecoder_Angle(t *testing.T) {
	d := NewDetentDecoder(2 * math.Pi / 24)
	total := 0
	for i := 0; i < 100; i++ {
		total += d.Add(2 * math.Pi / 100)
	}
	if total < 23 || total > 24 {
		t.Errorf("expected about 24 detents for a full turn, got %d", total)
	}
}

func TestPressClassifier(t *testing.T) {
	tests := []struct {
		name  string
		input []bool
		want  []components.ButtonEvent
	}{
		{
			name:  "short press",
			input: []bool{true, true, false},
			want:  []components.ButtonEvent{components.ButtonNone, components.ButtonNone, components.ButtonShortPress},
		},
		{
			name:  "long press fires once while held",
			input: []bool{true, true, true, true, false},
			want: []components.ButtonEvent{
				components.ButtonNone, components.ButtonNone, components.ButtonLongPress,
				components.ButtonNone, components.ButtonNone,
			},
		},
		{
			name:  "idle",
			input: []bool{false, false},
			want:  []components.ButtonEvent{components.ButtonNone, components.ButtonNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPressClassifier(3)
			for i, pressed := range tt.input {
				if got := p.Update(pressed); got != tt.want[i] {
					t.Errorf("frame %d: expected %s, got %s", i, tt.want[i], got)
				}
			}
		})
	}
}

func TestRepeatFires(t *testing.T) {
	var fired []int
	for d := 0; d <= 30; d++ {
		if repeatFires(d, 18, 3) {
			fired = append(fired, d)
		}
	}
	want := []int{1, 21, 24, 27, 30}
	if len(fired) != len(want) {
		t.Fatalf("expected fires at %v, got %v", want, fired)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("expected fires at %v, got %v", want, fired)
			break
		}
	}
}
