package admin

import (
	"github.com/dujiao-next/loyalty/internal/http/response"
	"github.com/dujiao-next/loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// GetLoyaltySettings 获取会员体系配置
func (h *Handler) GetLoyaltySettings(c *gin.Context) {
	setting, err := h.SettingService.GetLoyaltySetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateLoyaltySettings 更新会员体系配置
func (h *Handler) UpdateLoyaltySettings(c *gin.Context) {
	var req service.LoyaltySetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	updated, err := h.SettingService.UpdateLoyaltySetting(req)
	if err != nil {
		respondMappedError(c, err, "error.settings_save_failed")
		return
	}
	requestLog(c).Infow("loyalty_setting_updated", "tiers", len(updated.Tiers))
	response.Success(c, updated)
}
