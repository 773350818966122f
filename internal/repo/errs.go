package repo

import (
	"strings"

	"pharma-scanner/internal/domain"
)

// isDupKey 不依赖 gorm.ErrDuplicatedKey，避免驱动/版本差异。
// 覆盖 sqlite ("UNIQUE constraint failed")、mysql ("Duplicate entry")、
// postgres ("duplicate key value violates unique constraint")。
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

// translateUserDup 把唯一索引冲突翻译成领域错误。
// 三种驱动的报错信息里都带列名或索引名，按字段名区分。
func translateUserDup(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "email"):
		return domain.ErrDuplicateEmail
	case strings.Contains(msg, "username"):
		return domain.ErrDuplicateUsername
	default:
		return err
	}
}
