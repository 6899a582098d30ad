package config

import (
	"testing"

	"github.com/decker502/shatterdial/pkg/components"
)

func TestCategoryFor(t *testing.T) {
	cfg := DefaultDestructionConfig()

	tests := []struct {
		damage float64
		want   components.Category
	}{
		{0, components.CategoryPristine},
		{0.0499, components.CategoryPristine},
		{0.05, components.CategoryTiny},
		{0.149, components.CategoryTiny},
		{0.15, components.CategorySmall},
		{0.30, components.CategoryMedium},
		{0.4999, components.CategoryMedium},
		{0.50, components.CategoryLarge},
		{0.65, components.CategoryShatter},
		{0.75, components.CategoryHeavyShatter},
		{0.85, components.CategorySilence},
		{1.0, components.CategorySilence},
	}

	for _, tt := range tests {
		if got := cfg.CategoryFor(tt.damage); got != tt.want {
			t.Errorf("CategoryFor(%v) = %s, want %s", tt.damage, got, tt.want)
		}
	}
}

func TestCategoryBounds(t *testing.T) {
	cfg := DefaultDestructionConfig()

	// 每个阶段的下界都映射回该阶段，且严格递增
	prev := -1.0
	for _, cat := range components.DestructionCategories() {
		low := cfg.LowerBound(cat)
		if got := cfg.CategoryFor(low); got != cat {
			t.Errorf("CategoryFor(LowerBound(%s)=%v) = %s", cat, low, got)
		}
		if low <= prev {
			t.Errorf("lower bound of %s (%v) should exceed previous bound %v", cat, low, prev)
		}
		prev = low
	}

	if cfg.LowerBound(components.CategoryRebuilding) != 0 {
		t.Error("recovery categories have no threshold lower bound")
	}
}
