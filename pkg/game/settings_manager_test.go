package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下创建 gdata manager
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	gdataManager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return gdataManager
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.SoundVolume != 0.8 {
		t.Errorf("SoundVolume: got %v, want 0.8", settings.SoundVolume)
	}
	if !settings.SoundEnabled {
		t.Error("SoundEnabled: got false, want true")
	}
	if !settings.HapticsEnabled {
		t.Error("HapticsEnabled: got false, want true")
	}
	if settings.HapticStrength != 0.6 {
		t.Errorf("HapticStrength: got %v, want 0.6", settings.HapticStrength)
	}
	if settings.Fullscreen {
		t.Error("Fullscreen: got true, want false")
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewSettingsManager(nil)
	if err != nil {
		t.Fatalf("NewSettingsManager(nil) error: %v", err)
	}

	if sm.GetSettings().SoundVolume != 0.8 {
		t.Errorf("Degraded mode SoundVolume: got %v, want 0.8", sm.GetSettings().SoundVolume)
	}

	// 降级模式下 Save() 不报错，Load() 恢复默认值
	sm.SetSoundVolume(0.3)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should return nil, got: %v", err)
	}
	if err := sm.Load(); err != nil {
		t.Errorf("Load() in degraded mode should return nil, got: %v", err)
	}
	if sm.GetSettings().SoundVolume != 0.8 {
		t.Errorf("After Load() in degraded mode, SoundVolume: got %v, want 0.8", sm.GetSettings().SoundVolume)
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	gdataManager := openTestGdata(t, "test_shatterdial_settings")

	sm1, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}

	sm1.SetSoundVolume(0.5)
	sm1.SetSoundEnabled(false)
	sm1.SetHapticsEnabled(false)
	sm1.SetHapticStrength(0.25)
	sm1.SetFullscreen(true)

	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// 新的管理器从同一存储读取
	sm2, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}

	settings := sm2.GetSettings()
	if settings.SoundVolume != 0.5 {
		t.Errorf("Loaded SoundVolume: got %v, want 0.5", settings.SoundVolume)
	}
	if settings.SoundEnabled {
		t.Error("Loaded SoundEnabled: got true, want false")
	}
	if settings.HapticsEnabled {
		t.Error("Loaded HapticsEnabled: got true, want false")
	}
	if settings.HapticStrength != 0.25 {
		t.Errorf("Loaded HapticStrength: got %v, want 0.25", settings.HapticStrength)
	}
	if !settings.Fullscreen {
		t.Error("Loaded Fullscreen: got false, want true")
	}
}

// TestSettingsLoadPartial 旧数据缺少的字段保持默认值
func TestSettingsLoadPartial(t *testing.T) {
	gdataManager := openTestGdata(t, "test_shatterdial_partial")

	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte("soundVolume: 1.7\n")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm, _ := NewSettingsManager(gdataManager)
	settings := sm.GetSettings()
	if settings.SoundVolume != 1.0 {
		t.Errorf("SoundVolume should be clamped to 1.0, got %v", settings.SoundVolume)
	}
	if !settings.HapticsEnabled || settings.HapticStrength != 0.6 {
		t.Errorf("missing haptic fields should keep defaults, got %+v", settings)
	}
}

// TestSettingsLoadCorrupt 数据损坏时回退到默认值并返回错误
func TestSettingsLoadCorrupt(t *testing.T) {
	gdataManager := openTestGdata(t, "test_shatterdial_corrupt")

	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte("soundVolume: [oops")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() should not fail on corrupt data: %v", err)
	}
	if err := sm.Load(); err == nil {
		t.Error("Load() should report corrupt data")
	}
	if sm.GetSettings().SoundVolume != 0.8 {
		t.Errorf("expected default volume after corrupt load, got %v", sm.GetSettings().SoundVolume)
	}
}

// TestSetterClamp 测试音量和震动强度的范围校验
func TestSetterClamp(t *testing.T) {
	sm, _ := NewSettingsManager(nil)

	tests := []struct {
		input    float64
		expected float64
	}{
		{0.5, 0.5},  // 正常值
		{0.0, 0.0},  // 下限
		{1.0, 1.0},  // 上限
		{-0.5, 0.0}, // 低于下限
		{1.5, 1.0},  // 高于上限
		{-100, 0.0}, // 极小值
		{100, 1.0},  // 极大值
	}

	for _, tt := range tests {
		sm.SetSoundVolume(tt.input)
		if sm.GetSettings().SoundVolume != tt.expected {
			t.Errorf("SetSoundVolume(%v): got %v, want %v", tt.input, sm.GetSettings().SoundVolume, tt.expected)
		}
		sm.SetHapticStrength(tt.input)
		if sm.GetSettings().HapticStrength != tt.expected {
			t.Errorf("SetHapticStrength(%v): got %v, want %v", tt.input, sm.GetSettings().HapticStrength, tt.expected)
		}
	}
}

// TestToggles 测试开关类设置
func TestToggles(t *testing.T) {
	sm, _ := NewSettingsManager(nil)

	sm.SetSoundEnabled(false)
	sm.SetHapticsEnabled(false)
	sm.SetFullscreen(true)

	s := sm.GetSettings()
	if s.SoundEnabled || s.HapticsEnabled || !s.Fullscreen {
		t.Errorf("toggles not applied: %+v", s)
	}
}
