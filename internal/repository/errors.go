package repository

import "errors"

// 通用的存储库错误
var (
	// ErrNotFound 表示请求的记录未找到
	ErrNotFound = errors.New("repository: record not found")
)

// 特定资源的错误
var (
	ErrLatestPointNotFound = ErrNotFound
)
