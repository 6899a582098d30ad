//go:build android

package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// StorageDir 返回 Android 应用私有目录 /data/data/{package}
func StorageDir() (string, error) {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", fmt.Errorf("failed to read process name: %w", err)
	}

	// cmdline 以 NUL 分隔，第一个字段是包名
	name, _, _ := bytes.Cut(data, []byte{0})
	name = bytes.TrimSpace(name)
	if len(name) == 0 {
		return "", fmt.Errorf("empty process name in /proc/self/cmdline")
	}
	return filepath.Join("/data/data", string(name)), nil
}

// EnsureStorageDir 在 gdata 初始化前创建并验证设置目录
// gdata 在 Android 上不会预先创建子目录
func EnsureStorageDir() error {
	root, err := StorageDir()
	if err != nil {
		return err
	}

	dir := filepath.Join(root, "settings")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, nil, 0644); err != nil {
		return fmt.Errorf("settings directory %s is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}
