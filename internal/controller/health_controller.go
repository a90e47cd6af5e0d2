package controller

import (
	"net/http"
	"time"

	"studypath_backend/internal/repository"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Slot      *repository.DurableSlot
	StartedAt time.Time
}

func NewHealthController(slot *repository.DurableSlot) *HealthController {
	return &HealthController{Slot: slot, StartedAt: time.Now()}
}

// Health godoc
// @Summary 健康检查
// @Description 返回服务状态与持久化降级标志
// @Tags 系统
// @Produce  json
// @Success 200 {object} object "健康状态"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	status := "ok"
	if c.Slot != nil && c.Slot.Degraded() {
		status = "degraded"
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  status,
		"uptime":  time.Since(c.StartedAt).String(),
		"version": "1.0.0",
	})
}
