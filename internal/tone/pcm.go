package tone

import (
	"math/rand"

	"github.com/gopxl/beep"

	"github.com/decker502/shatterdial/pkg/components"
)

// pcmFormat ebiten audio 使用的格式：16 位有符号小端，双声道
var pcmFormat = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

// EncodePCM 将有限长的音频流完整编码为 16 位立体声 PCM
func EncodePCM(s beep.Streamer) []byte {
	var out []byte
	buf := make([][2]float64, 512)
	frame := make([]byte, pcmFormat.Width())
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			pcmFormat.EncodeSigned(frame, buf[i])
			out = append(out, frame...)
		}
		if !ok || n == 0 {
			break
		}
	}
	return out
}

// CuePCM 渲染反馈事件为 PCM 数据；没有对应音效时返回 nil
func CuePCM(cue components.Cue, volume float64, rng *rand.Rand) []byte {
	recipe := ForCue(cue)
	if len(recipe.Layers) == 0 {
		return nil
	}
	return EncodePCM(recipe.Streamer(SampleRate, volume, rng))
}
