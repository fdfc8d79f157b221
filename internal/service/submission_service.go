package service

import (
	"context"
	"eduspark_backend/internal/model"
	"eduspark_backend/internal/util"
	"eduspark_backend/pkg/logger"
	"eduspark_backend/pkg/monitoring"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

// 编排器对下游的依赖面，按消费方收窄便于注入
type gradingProvider interface {
	Grade(ctx context.Context, metadata model.QuizMetadata, submission model.QuizSubmission, answersContent string) (*model.GradingResult, error)
}

type assessmentProvider interface {
	Assess(ctx context.Context, metadata model.QuizMetadata, grading *model.GradingResult, submission model.QuizSubmission) (*model.AssessmentReport, error)
}

type quizRecordStore interface {
	Create(record *model.QuizRecord) error
	FindLatestByUser(userID uint) (*model.QuizRecord, error)
}

type assessmentRecordStore interface {
	Create(record *model.AssessmentRecord) error
}

type paramsStore interface {
	Put(ctx context.Context, scope string, params model.LearnerProfileParams) error
}

// SubmissionService 提交流水线编排：校验 → 批改（致命）→ 评估（非致命）→
// 画像交接 + 异步落库。
type SubmissionService struct {
	telemetry         *TelemetryService
	grading           gradingProvider
	assessment        assessmentProvider
	quizRecords       quizRecordStore
	assessmentRecords assessmentRecordStore
	params            paramsStore
	now               func() time.Time
}

func NewSubmissionService(
	telemetry *TelemetryService,
	grading gradingProvider,
	assessment assessmentProvider,
	quizRecords quizRecordStore,
	assessmentRecords assessmentRecordStore,
	params paramsStore,
) *SubmissionService {
	return &SubmissionService{
		telemetry:         telemetry,
		grading:           grading,
		assessment:        assessment,
		quizRecords:       quizRecords,
		assessmentRecords: assessmentRecords,
		params:            params,
		now:               time.Now,
	}
}

// Submit 执行提交流水线。标准答案缺失在任何出站调用之前拒绝；
// 同一会话并发提交被拒绝而非排队。
func (s *SubmissionService) Submit(ctx context.Context, sessionID string) (*model.SubmissionOutcome, error) {
	session, err := s.telemetry.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.Submitted() {
		return nil, util.ErrSessionSubmitted
	}

	if strings.TrimSpace(session.AnswersContent) == "" {
		return nil, util.ErrMissingAnswerKey
	}

	if !session.BeginSubmit() {
		return nil, util.ErrSubmissionInProgress
	}
	defer session.EndSubmit()

	submission := s.telemetry.BuildSubmission(session)

	grading, err := s.grading.Grade(ctx, session.Metadata, submission, session.AnswersContent)
	if err != nil {
		return nil, err
	}

	outcome := &model.SubmissionOutcome{
		GradingResults: grading,
		Encouragement:  GenerateEncouragement(grading.Percentage),
		Metadata: model.SubmitMetadata{
			GradedAt:     s.now(),
			QuizMetadata: session.Metadata,
			AnswersCount: len(submission.Answers),
		},
	}

	// 游客会话只批改不评估
	if session.UserID != 0 {
		report, err := s.assessment.Assess(ctx, session.Metadata, grading, submission)
		if err != nil {
			monitoring.ObserveStage("assessment", "skipped", 0)
			logger.Log.Warn("评估阶段失败，降级为无报告",
				zap.String("session_id", session.ID),
				zap.Uint("user_id", session.UserID),
				zap.Error(err))
		} else {
			outcome.Assessment = report
			outcome.Metadata.HasAssessment = true

			params := DeriveProfileParams(report.StructuredData, session.Metadata.Parameters.Subject)
			if err := s.params.Put(ctx, UserScope(session.UserID), params); err != nil {
				logger.Log.Warn("画像参数写入失败", zap.Uint("user_id", session.UserID), zap.Error(err))
			}
		}

		// 落库不阻塞学习者可见结果
		go s.persistRecords(session, grading, outcome.Assessment)
	}

	session.MarkSubmitted()
	return outcome, nil
}

// persistRecords 尽力而为的成绩与评估落库，所有失败只记日志
func (s *SubmissionService) persistRecords(session *QuizSession, grading *model.GradingResult, report *model.AssessmentReport) {
	topic := session.Metadata.Topic
	if topic == "" {
		topic = session.Metadata.Parameters.Subject
	}

	detail, err := json.Marshal(grading.QuestionDetails)
	if err != nil {
		detail = nil
	}

	quizRecord := &model.QuizRecord{
		UserID:          session.UserID,
		Topic:           topic,
		Score:           grading.TotalScore,
		MaxScore:        grading.MaxScore,
		CorrectCount:    grading.CorrectCount(),
		TotalQuestions:  len(grading.QuestionDetails),
		QuestionsDetail: detail,
	}

	var relatedQuizID *uint
	if err := s.quizRecords.Create(quizRecord); err != nil {
		logger.Log.Warn("测验记录写入失败", zap.Uint("user_id", session.UserID), zap.Error(err))
		// 关联退化为查最近一条成绩，查不到就不关联
		if latest, lookupErr := s.quizRecords.FindLatestByUser(session.UserID); lookupErr == nil && latest != nil {
			relatedQuizID = &latest.ID
		}
	} else {
		relatedQuizID = &quizRecord.ID
	}

	if report == nil {
		return
	}

	structured := report.StructuredData
	learningStyle := ExtractLearningStyle(report.Report)

	gaps, _ := json.Marshal(structured.KnowledgeGaps)
	strengths, _ := json.Marshal(structured.Strengths)
	suggestions, _ := json.Marshal(structured.Weaknesses)

	record := &model.AssessmentRecord{
		UserID:         session.UserID,
		RelatedQuizID:  relatedQuizID,
		CognitiveLevel: CognitiveLevelLabel(structured.CognitiveAssessment.Level),
		LearningStyle:  learningStyle,
		KnowledgeGaps:  gaps,
		Strengths:      strengths,
		Suggestions:    suggestions,
		FullReport:     report.Report,
	}

	if err := s.assessmentRecords.Create(record); err != nil {
		logger.Log.Warn("评估记录写入失败", zap.Uint("user_id", session.UserID), zap.Error(err))
	}
}
