package controller

import (
	"errors"

	"studypath_backend/internal/model"
	"studypath_backend/internal/service"
	"studypath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// RecordController 管理学生档案的读写
type RecordController struct {
	RecordService *service.RecordService
}

func NewRecordController(recordService *service.RecordService) *RecordController {
	return &RecordController{RecordService: recordService}
}

func recordKeyFromContext(ctx *gin.Context) string {
	return service.RecordKey(ctx.GetUint("userID"))
}

// Onboard godoc
// @Summary 完成新生引导
// @Description 使用问卷中收集的学习档案初始化学生记录，覆盖已有记录
// @Tags 学生记录
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body model.Profile true "学习档案"
// @Success 201 {object} util.Response{data=model.StudentData} "创建成功"
// @Failure 400 {object} util.Response "档案不合法"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/onboarding [post]
func (c *RecordController) Onboard(ctx *gin.Context) {
	var profile model.Profile
	if err := ctx.ShouldBindJSON(&profile); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	data := model.NewStudentData(profile)
	key := recordKeyFromContext(ctx)
	if err := c.RecordService.Replace(key, data); err != nil {
		if errors.Is(err, util.ErrInvalidProfile) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, data)
}

// GetRecord godoc
// @Summary 获取学生记录
// @Description 返回当前用户的完整学习记录
// @Tags 学生记录
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.StudentData} "成功"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/student/record [get]
func (c *RecordController) GetRecord(ctx *gin.Context) {
	data, ok := c.RecordService.Read(recordKeyFromContext(ctx))
	if !ok {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, data)
}

// PatchRecord godoc
// @Summary 局部更新学生记录
// @Description 合并请求中出现的字段，未出现的字段保持不变
// @Tags 学生记录
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.RecordPatch true "局部更新"
// @Success 200 {object} util.Response{data=model.StudentData} "成功"
// @Failure 400 {object} util.Response "档案不合法"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/student/record [patch]
func (c *RecordController) PatchRecord(ctx *gin.Context) {
	var patch service.RecordPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	data, err := c.RecordService.Merge(recordKeyFromContext(ctx), patch)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNoActiveRecord):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidProfile):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, data)
}

// ResetRecord godoc
// @Summary 重置学生记录
// @Description 删除当前用户的学习记录，重复调用安全
// @Tags 学生记录
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "成功"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/student/record [delete]
func (c *RecordController) ResetRecord(ctx *gin.Context) {
	if err := c.RecordService.Reset(recordKeyFromContext(ctx)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
