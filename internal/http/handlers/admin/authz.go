package admin

import (
	"errors"
	"strings"

	"github.com/dujiao-next/loyalty/internal/authz"
	"github.com/dujiao-next/loyalty/internal/http/response"

	"github.com/gin-gonic/gin"
)

type rolePolicies struct {
	Role     string         `json:"role"`
	Policies []authz.Policy `json:"policies"`
}

// ListAuthzRoles 列出内部接口角色及其直接策略
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	items := make([]rolePolicies, 0, len(roles))
	for _, role := range roles {
		policies, err := h.AuthzService.GetRolePolicies(role)
		if err != nil {
			respondAuthzError(c, err)
			return
		}
		items = append(items, rolePolicies{Role: role, Policies: policies})
	}
	response.Success(c, items)
}

// GetServiceRoles 查询调用方服务被授予的角色
func (h *Handler) GetServiceRoles(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	roles, err := h.AuthzService.GetServiceRoles(name)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Success(c, gin.H{"service": strings.ToLower(name), "roles": roles})
}

func respondAuthzError(c *gin.Context, err error) {
	if errors.Is(err, authz.ErrUnavailable) {
		respondError(c, response.CodeServiceUnavailable, "error.authz_unavailable", err)
		return
	}
	respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
}
