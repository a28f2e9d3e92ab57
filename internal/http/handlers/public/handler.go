package public

import "github.com/realty-promo/internal/provider"

// Handler 前台接口处理器（公开展示位与房东本人数据）
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
