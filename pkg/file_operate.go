package pkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CheckFileExist 检查文件是否存在
func CheckFileExist(filePath string) (bool, error) {
	_, err := os.Lstat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadInput 读取输入文件, "-" 表示标准输入
func ReadInput(filePath string) (string, error) {
	if filePath == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	exist, err := CheckFileExist(filePath)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", filePath, err)
	}
	if !exist {
		return "", fmt.Errorf("input file %s: %w", filePath, os.ErrNotExist)
	}
	b, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filePath, err)
	}
	return string(b), nil
}

// WriteOutput 写入输出文件, 目录不存在时创建
func WriteOutput(filePath string, data []byte) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filePath, err)
	}
	return nil
}
