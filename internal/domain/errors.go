package domain

import "errors"

// 错误分类。仓储层把底层存储错误翻译成这几类，网关层错误原样上抛。
var (
	// ErrNotFound 写路径目标 id 不存在（读路径按约定返回 nil，不用它）。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail / ErrDuplicateUsername 唯一索引冲突。
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrInvalidImportFormat 导入文件缺少 products 和 settings。
	ErrInvalidImportFormat = errors.New("invalid import format")
	// ErrStorageUnavailable 本地存储打不开（权限、配额等）。
	ErrStorageUnavailable = errors.New("storage unavailable")
)
