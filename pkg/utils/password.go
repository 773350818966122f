package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword 对 UTF-8 口令做 SHA-256，返回稳定的十六进制串。
// 存储层只把结果当不透明字符串；比对用 CheckPassword。
func HashPassword(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

func CheckPassword(pw, digest string) bool {
	return HashPassword(pw) == digest
}
