//go:build !android

package utils

// StorageDir 非 Android 平台由 gdata 自行决定存储位置
func StorageDir() (string, error) {
	return "", nil
}

// EnsureStorageDir 非 Android 平台无需准备目录
func EnsureStorageDir() error {
	return nil
}
