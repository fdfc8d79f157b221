package controller

import (
	"context"
	"eduspark_backend/internal/model"
	"eduspark_backend/internal/service"
	"eduspark_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Telemetry  *service.TelemetryService
	Submission *service.SubmissionService
	Params     *service.ProfileParamsStore
}

func NewQuizController(telemetry *service.TelemetryService, submission *service.SubmissionService, params *service.ProfileParamsStore) *QuizController {
	return &QuizController{
		Telemetry:  telemetry,
		Submission: submission,
		Params:     params,
	}
}

type CreateSessionRequest struct {
	QuizMetadata   model.QuizMetadata `json:"quiz_metadata"`
	Questions      []model.Question   `json:"questions" binding:"required"`
	AnswersContent string             `json:"answers_content"`
}

// @Summary 注册答题会话
// @Description 登记一份生成试卷并开启遥测会话，游客可用
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body CreateSessionRequest true "试卷信息"
// @Success 201 {object} util.Response
// @Router /quiz/sessions [post]
func (c *QuizController) CreateSession(ctx *gin.Context) {
	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var userID uint
	if user := util.GetUserFromContext(ctx); user != nil {
		userID = user.UserID
	}

	session, err := c.Telemetry.CreateSession(userID, req.QuizMetadata, req.Questions, req.AnswersContent)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, gin.H{
		"session_id":      session.ID,
		"total_questions": len(session.Questions),
	})
}

type TouchRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
}

// @Summary 首次触达遥测
// @Description 记录题目的首次交互时间与触达顺序，重复调用幂等
// @Tags 测验
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param body body TouchRequest true "题目ID"
// @Success 200 {object} util.Response
// @Router /quiz/sessions/{id}/touch [post]
func (c *QuizController) Touch(ctx *gin.Context) {
	var req TouchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Telemetry.Touch(ctx.Param("id"), req.QuestionID); err != nil {
		c.writeSessionError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

type AnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Value      string `json:"value"`
}

// @Summary 记录答案变化
// @Description 记录一次被接受的答案值变化并维护修改计数
// @Tags 测验
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param body body AnswerRequest true "题目ID与答案值"
// @Success 200 {object} util.Response
// @Router /quiz/sessions/{id}/answer [post]
func (c *QuizController) RecordAnswer(ctx *gin.Context) {
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Telemetry.RecordAnswer(ctx.Param("id"), req.QuestionID, req.Value); err != nil {
		c.writeSessionError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary 提交答卷
// @Description 冻结遥测数据并执行批改与评估流水线
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 408 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /quiz/sessions/{id}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	outcome, err := c.Submission.Submit(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrMissingAnswerKey), errors.Is(err, util.ErrSessionSubmitted):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrSubmissionInProgress):
			util.Error(ctx, http.StatusConflict, err.Error())
		case errors.Is(err, util.ErrGradingTimeout):
			util.Error(ctx, http.StatusRequestTimeout, err.Error())
		case errors.Is(err, util.ErrGradingResponseMalformed):
			util.Error(ctx, http.StatusInternalServerError, err.Error())
		case errors.Is(err, context.Canceled):
			// 客户端已离开，响应无人接收
			ctx.Abort()
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, outcome)
}

// @Summary 消费学习者画像参数
// @Description 取出最近一次评估派生的画像参数，恰好消费一次，之后清除
// @Tags 测验
// @Produce json
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /content-params [get]
func (c *QuizController) ConsumeProfileParams(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.NotFound(ctx)
		return
	}

	params, err := c.Params.Consume(ctx.Request.Context(), service.UserScope(user.UserID))
	if err != nil {
		if errors.Is(err, util.ErrProfileParamsNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, params)
}

func (c *QuizController) writeSessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrUnknownQuestion), errors.Is(err, util.ErrSessionSubmitted):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
