package controller

import (
	"eduspark_backend/internal/repository"
	"eduspark_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RecordController struct {
	QuizRecords       *repository.QuizRecordRepository
	AssessmentRecords *repository.AssessmentRecordRepository
}

func NewRecordController(quiz *repository.QuizRecordRepository, assessment *repository.AssessmentRecordRepository) *RecordController {
	return &RecordController{
		QuizRecords:       quiz,
		AssessmentRecords: assessment,
	}
}

func parseLimit(ctx *gin.Context) int {
	limit := 10
	if s := ctx.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return limit
}

// @Summary 获取测验成绩历史
// @Tags 记录
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数，默认10"
// @Success 200 {object} util.Response
// @Router /quiz-records [get]
func (c *RecordController) ListQuizRecords(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	records, err := c.QuizRecords.ListByUser(user.UserID, parseLimit(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, records)
}

// @Summary 获取评估记录历史
// @Tags 记录
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数，默认10"
// @Success 200 {object} util.Response
// @Router /assessment-records [get]
func (c *RecordController) ListAssessmentRecords(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	records, err := c.AssessmentRecords.ListByUser(user.UserID, parseLimit(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, records)
}
