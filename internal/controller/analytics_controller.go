package controller

import (
	"errors"
	"net/http"
	"strconv"

	"studypath_backend/internal/service"
	"studypath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AnalyticsController 提供派生分析视图
type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	ExportService    *service.ExportService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService, exportService *service.ExportService) *AnalyticsController {
	return &AnalyticsController{
		AnalyticsService: analyticsService,
		ExportService:    exportService,
	}
}

// GetOverview godoc
// @Summary 获取学习概览
// @Description 汇总整体进度、积分与各项计数
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.LearningOverview} "成功"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/analytics/overview [get]
func (c *AnalyticsController) GetOverview(ctx *gin.Context) {
	overview, err := c.AnalyticsService.GetOverview(recordKeyFromContext(ctx))
	if err != nil {
		if errors.Is(err, util.ErrNoActiveRecord) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, overview)
}

// GetWeeklyProgress godoc
// @Summary 获取周进度序列
// @Description 返回按周聚合的各科目成绩序列，缺测周沿用上周数值
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Param   weeks query int false "周数，默认8"
// @Success 200 {object} util.Response{data=[]service.WeeklyProgressPoint} "成功"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/analytics/progress [get]
func (c *AnalyticsController) GetWeeklyProgress(ctx *gin.Context) {
	weeks, err := strconv.Atoi(ctx.DefaultQuery("weeks", "8"))
	if err != nil || weeks < 1 || weeks > 52 {
		util.BadRequest(ctx, "weeks must be an integer between 1 and 52")
		return
	}

	series, err := c.AnalyticsService.GetWeeklyProgress(recordKeyFromContext(ctx), weeks)
	if err != nil {
		if errors.Is(err, util.ErrNoActiveRecord) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, series)
}

// GetSkillRadar godoc
// @Summary 获取技能雷达数据
// @Description 返回每个科目的当前/目标水平，换算到百分制
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.SkillRadarEntry} "成功"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/analytics/skills [get]
func (c *AnalyticsController) GetSkillRadar(ctx *gin.Context) {
	radar, err := c.AnalyticsService.GetSkillRadar(recordKeyFromContext(ctx))
	if err != nil {
		if errors.Is(err, util.ErrNoActiveRecord) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, radar)
}

// ExportReport godoc
// @Summary 导出进度报表
// @Description 生成 xlsx 进度报表；配置了对象存储时同时上传并返回下载地址
// @Tags 分析
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Success 200 {file} binary "报表文件"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/analytics/report [get]
func (c *AnalyticsController) ExportReport(ctx *gin.Context) {
	userID := ctx.GetUint("userID")
	report, err := c.ExportService.BuildProgressReport(ctx.Request.Context(), recordKeyFromContext(ctx), userID)
	if err != nil {
		if errors.Is(err, util.ErrNoActiveRecord) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	if report.URL != "" {
		ctx.Header("X-Report-URL", report.URL)
	}
	ctx.Header("Content-Disposition", "attachment; filename=progress_report.xlsx")
	ctx.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report.Data)
}
