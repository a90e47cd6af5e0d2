package controller

import (
	"errors"

	"studypath_backend/internal/service"
	"studypath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// GetDashboard godoc
// @Summary 获取仪表盘
// @Description 返回首页聚合视图：进度、积分、近期活动与测验
// @Tags 仪表盘
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Dashboard} "成功"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	dash, err := c.DashboardService.GetDashboard(recordKeyFromContext(ctx))
	if err != nil {
		if errors.Is(err, util.ErrNoActiveRecord) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, dash)
}
