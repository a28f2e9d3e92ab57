package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/realty-promo/internal/constants"
)

// Actor 当前操作者（由外部认证服务签发的身份）
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin 是否为管理员
func (a Actor) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(a.Role), constants.UserRoleAdmin)
}

func requireAdmin(actor Actor) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return ErrActorRequired
	}
	if !actor.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

// storeError 将记录存储错误归入依赖错误类别
func storeError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// Clock 可注入的时钟
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
