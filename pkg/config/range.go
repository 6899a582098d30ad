package config

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Range 数值范围
//
// YAML 中支持两种写法：
//   - 固定值: "1.5" 或 1.5 → Min=Max=1.5
//   - 范围:   "[0.7 0.9]"   → Min=0.7, Max=0.9
type Range struct {
	Min float64
	Max float64
}

// fixed 返回 Min=Max=v 的范围
func fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

// ParseRange 解析范围字符串
//
// 参数:
//   - s: "1500" 或 "[0.7 0.9]"
//
// 返回:
//   - Range: 解析结果（Min > Max 时自动交换）
//   - error: 格式错误
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("empty range")
	}

	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return Range{}, fmt.Errorf("unterminated range %q", s)
		}
		parts := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
		if len(parts) != 2 {
			return Range{}, fmt.Errorf("range %q must have exactly two values", s)
		}
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Range{}, fmt.Errorf("invalid range min in %q: %w", s, err)
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Range{}, fmt.Errorf("invalid range max in %q: %w", s, err)
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return Range{Min: lo, Max: hi}, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return fixed(v), nil
}

// Random 在 [Min, Max) 内均匀取值，使用调用方提供的随机源
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// String 返回 YAML 友好的表示
func (r Range) String() string {
	if r.Min == r.Max {
		return strconv.FormatFloat(r.Min, 'g', -1, 64)
	}
	return "[" + strconv.FormatFloat(r.Min, 'g', -1, 64) + " " + strconv.FormatFloat(r.Max, 'g', -1, 64) + "]"
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: range must be a scalar like \"[1 2]\" or 1.5", value.Line)
	}
	parsed, err := ParseRange(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*r = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r Range) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}
