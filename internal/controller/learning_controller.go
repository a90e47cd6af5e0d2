package controller

import (
	"errors"

	"studypath_backend/internal/model"
	"studypath_backend/internal/service"
	"studypath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// LearningController 负责学习活动、内容生成与测验
type LearningController struct {
	RecordService     *service.RecordService
	GenerationService *service.GenerationService
}

func NewLearningController(recordService *service.RecordService, generationService *service.GenerationService) *LearningController {
	return &LearningController{
		RecordService:     recordService,
		GenerationService: generationService,
	}
}

// LogActivity godoc
// @Summary 记录学习活动
// @Description 追加一条活动日志并累加积分，未开通记录时静默成功
// @Tags 学习
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ActivityInput true "活动信息"
// @Success 200 {object} util.Response{data=model.StudentData} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/learning/activities [post]
func (c *LearningController) LogActivity(ctx *gin.Context) {
	var input service.ActivityInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	data := c.RecordService.LogActivity(recordKeyFromContext(ctx), input)
	util.Success(ctx, data)
}

// GenerateContentRequest 个性化内容生成请求
type GenerateContentRequest struct {
	Subject string `json:"subject" binding:"required"`
	Topic   string `json:"topic" binding:"required"`
}

// GenerateContent godoc
// @Summary 生成个性化学习内容
// @Description 按档案生成一节课并存入内容库
// @Tags 学习
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body GenerateContentRequest true "科目与主题"
// @Success 200 {object} util.Response{data=model.GeneratedContent} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/learning/content [post]
func (c *LearningController) GenerateContent(ctx *gin.Context) {
	var req GenerateContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	key := recordKeyFromContext(ctx)
	data, ok := c.RecordService.Read(key)
	if !ok {
		util.NotFound(ctx)
		return
	}

	body, fellBack := c.GenerationService.GenerateContent(ctx.Request.Context(), &data.Profile, req.Subject, req.Topic)

	saved, err := c.RecordService.SaveGeneratedContent(key, service.ContentInput{
		Subject:     req.Subject,
		Topic:       req.Topic,
		ContentType: "lesson",
		Body:        *body,
	})
	if err != nil {
		if errors.Is(err, util.ErrNoActiveRecord) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"content": saved, "fallback": fellBack})
}

// GenerateQuizRequest 测验生成请求
type GenerateQuizRequest struct {
	Subject       string `json:"subject" binding:"required"`
	Topic         string `json:"topic" binding:"required"`
	QuestionCount int    `json:"questionCount"`
}

// GenerateQuiz godoc
// @Summary 生成测验
// @Description 按档案难度生成一套选择题，不写入记录
// @Tags 学习
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body GenerateQuizRequest true "科目与主题"
// @Success 200 {object} util.Response{data=service.GeneratedQuiz} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/learning/quiz [post]
func (c *LearningController) GenerateQuiz(ctx *gin.Context) {
	var req GenerateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	data, ok := c.RecordService.Read(recordKeyFromContext(ctx))
	if !ok {
		util.NotFound(ctx)
		return
	}

	quiz, fellBack := c.GenerationService.GenerateQuiz(ctx.Request.Context(), &data.Profile, req.Subject, req.Topic, req.QuestionCount)
	util.Success(ctx, gin.H{"quiz": quiz, "fallback": fellBack})
}

// SubmitQuizRequest 测验提交请求
type SubmitQuizRequest struct {
	Subject     string               `json:"subject" binding:"required"`
	Topic       string               `json:"topic"`
	Questions   []model.QuizQuestion `json:"questions" binding:"required"`
	UserAnswers map[string]string    `json:"userAnswers" binding:"required"`
}

// SubmitQuiz godoc
// @Summary 提交测验答案
// @Description 评分、写入测验历史并按成绩微调科目等级
// @Tags 学习
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SubmitQuizRequest true "题目与作答"
// @Success 200 {object} util.Response{data=model.QuizAttempt} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/learning/quiz/submit [post]
func (c *LearningController) SubmitQuiz(ctx *gin.Context) {
	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	score := service.ScoreQuiz(req.Questions, req.UserAnswers)
	attempt, err := c.RecordService.SaveQuizAttempt(recordKeyFromContext(ctx), service.AttemptInput{
		Subject:     req.Subject,
		Topic:       req.Topic,
		Questions:   req.Questions,
		UserAnswers: req.UserAnswers,
		Score:       score,
	})
	if err != nil {
		if errors.Is(err, util.ErrNoActiveRecord) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, attempt)
}

// GetLearningPath godoc
// @Summary 获取学习路径
// @Description 按档案生成阶段性学习计划
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.LearningPathPlan} "成功"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/learning/path [get]
func (c *LearningController) GetLearningPath(ctx *gin.Context) {
	data, ok := c.RecordService.Read(recordKeyFromContext(ctx))
	if !ok {
		util.NotFound(ctx)
		return
	}

	plan, fellBack := c.GenerationService.GenerateLearningPath(ctx.Request.Context(), &data.Profile)
	util.Success(ctx, gin.H{"path": plan, "fallback": fellBack})
}

// TutorAskRequest 提问请求
type TutorAskRequest struct {
	Question string `json:"question" binding:"required"`
}

// AskTutor godoc
// @Summary 向AI导师提问
// @Description 结合学习档案回答自由提问
// @Tags 学习
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body TutorAskRequest true "问题"
// @Success 200 {object} util.Response{data=service.TutorAnswer} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/tutor/ask [post]
func (c *LearningController) AskTutor(ctx *gin.Context) {
	var req TutorAskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	data, ok := c.RecordService.Read(recordKeyFromContext(ctx))
	if !ok {
		util.NotFound(ctx)
		return
	}

	answer, fellBack := c.GenerationService.AnswerQuestion(ctx.Request.Context(), &data.Profile, req.Question)
	util.Success(ctx, gin.H{"answer": answer, "fallback": fellBack})
}
