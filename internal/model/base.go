package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeLayout 表格中时间统一用 RFC3339 文本保存
const TimeLayout = time.RFC3339

func GenerateUUID() string {
	return uuid.New().String()
}
