package utils

import (
	"github.com/google/uuid"
)

// GenerateID 生成请求ID与令牌ID
func GenerateID() string {
	return uuid.New().String()
}
