package public

import "github.com/dujiao-next/loyalty/internal/provider"

// Handler 用户侧接口处理器入口
// 说明：该处理器仅用于持有用户令牌的会员接口。
type Handler struct {
	*provider.Container
}

// New 创建用户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
