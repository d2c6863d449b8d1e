package util

import "healmymind_backend/internal/model"

// TimeFormat is used for timestamps in exported spreadsheets.
const TimeFormat = "2006-01-02 15:04:05"

// 分页
const (
	DefaultPageSize = model.DefaultPageSize
	MaxPageSize     = model.MaxPageSize
)
