package models

import (
	"strings"

	"github.com/google/uuid"
)

// ensureID 为空主键生成 UUID
func ensureID(id *string) {
	if id == nil || strings.TrimSpace(*id) != "" {
		return
	}
	*id = uuid.NewString()
}
