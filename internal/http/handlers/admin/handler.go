package admin

import "github.com/realty-promo/internal/provider"

// Handler 管理端接口：推广开通与下架、成交录入、任务触发与权限管理
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
