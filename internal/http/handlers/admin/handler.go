package admin

import "github.com/dujiao-next/loyalty/internal/provider"

// Handler 内部接口处理器入口
// 说明：该处理器仅用于持有服务令牌的上游系统（事件推送、运营配置）。
type Handler struct {
	*provider.Container
}

// New 创建内部接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
