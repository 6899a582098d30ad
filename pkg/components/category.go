package components

// Category 破坏阶段
//
// 按损伤程度递增排列。Rebuilding 和 Recovering 只能通过恢复路径进入
// （空闲超时或手动回退），不参与阈值映射。
type Category int

const (
	CategoryPristine Category = iota
	CategoryTiny
	CategorySmall
	CategoryMedium
	CategoryLarge
	CategoryShatter
	CategoryHeavyShatter
	CategorySilence
	CategoryRebuilding
	CategoryRecovering
)

var categoryNames = [...]string{
	CategoryPristine:     "Pristine",
	CategoryTiny:         "Tiny",
	CategorySmall:        "Small",
	CategoryMedium:       "Medium",
	CategoryLarge:        "Large",
	CategoryShatter:      "Shatter",
	CategoryHeavyShatter: "HeavyShatter",
	CategorySilence:      "Silence",
	CategoryRebuilding:   "Rebuilding",
	CategoryRecovering:   "Recovering",
}

// String returns the display name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Ordinal 返回阶段在破坏序列中的序号（Pristine=0 ... Silence=7）
// 恢复阶段返回 0，它们不属于破坏序列
func (c Category) Ordinal() int {
	if c.IsRecovery() {
		return 0
	}
	return int(c)
}

// IsRecovery 是否处于重建/恢复阶段
func (c Category) IsRecovery() bool {
	return c == CategoryRebuilding || c == CategoryRecovering
}

// IsCracking 是否处于持续开裂区间（Tiny..HeavyShatter）
func (c Category) IsCracking() bool {
	return c >= CategoryTiny && c <= CategoryHeavyShatter
}

// IsShatter 是否为碎裂阶段（进入时触发粒子爆发而不是裂纹）
func (c Category) IsShatter() bool {
	return c == CategoryShatter || c == CategoryHeavyShatter
}

// IsDrifting 是否持续生成漂浮粒子（高破坏阶段）
func (c Category) IsDrifting() bool {
	return c == CategoryHeavyShatter || c == CategorySilence
}

// DestructionCategories 按阈值顺序列出所有破坏阶段（不含恢复阶段）
func DestructionCategories() []Category {
	return []Category{
		CategoryPristine,
		CategoryTiny,
		CategorySmall,
		CategoryMedium,
		CategoryLarge,
		CategoryShatter,
		CategoryHeavyShatter,
		CategorySilence,
	}
}
