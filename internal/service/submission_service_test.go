package service

import (
	"context"
	"eduspark_backend/internal/model"
	"eduspark_backend/internal/util"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGrader struct {
	mu     sync.Mutex
	calls  int
	result *model.GradingResult
	err    error
}

func (f *fakeGrader) Grade(ctx context.Context, metadata model.QuizMetadata, submission model.QuizSubmission, answersContent string) (*model.GradingResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeGrader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAssessor struct {
	mu     sync.Mutex
	calls  int
	report *model.AssessmentReport
	err    error
}

func (f *fakeAssessor) Assess(ctx context.Context, metadata model.QuizMetadata, grading *model.GradingResult, submission model.QuizSubmission) (*model.AssessmentReport, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeAssessor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeQuizRecords struct {
	mu        sync.Mutex
	created   []*model.QuizRecord
	createErr error
	latest    *model.QuizRecord
	latestErr error
	nextID    uint
}

func (f *fakeQuizRecords) Create(record *model.QuizRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	record.ID = f.nextID
	f.created = append(f.created, record)
	return nil
}

func (f *fakeQuizRecords) FindLatestByUser(userID uint) (*model.QuizRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

type fakeAssessmentRecords struct {
	mu        sync.Mutex
	created   []*model.AssessmentRecord
	createErr error
}

func (f *fakeAssessmentRecords) Create(record *model.AssessmentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, record)
	return nil
}

type fakeParamsStore struct {
	mu     sync.Mutex
	scopes []string
	stored []model.LearnerProfileParams
	err    error
}

func (f *fakeParamsStore) Put(ctx context.Context, scope string, params model.LearnerProfileParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.scopes = append(f.scopes, scope)
	f.stored = append(f.stored, params)
	return nil
}

type submissionFixture struct {
	telemetry         *TelemetryService
	grader            *fakeGrader
	assessor          *fakeAssessor
	quizRecords       *fakeQuizRecords
	assessmentRecords *fakeAssessmentRecords
	params            *fakeParamsStore
	svc               *SubmissionService
}

func newSubmissionFixture() *submissionFixture {
	report := &model.AssessmentReport{
		Report:         "## 🎨 学习风格推断\n主导学习风格：视觉型",
		StructuredData: BuildStructuredData(sampleGradingResult(), sampleSubmission()),
	}
	f := &submissionFixture{
		telemetry:         NewTelemetryService(),
		grader:            &fakeGrader{result: sampleGradingResult()},
		assessor:          &fakeAssessor{report: report},
		quizRecords:       &fakeQuizRecords{},
		assessmentRecords: &fakeAssessmentRecords{},
		params:            &fakeParamsStore{},
	}
	f.svc = NewSubmissionService(f.telemetry, f.grader, f.assessor, f.quizRecords, f.assessmentRecords, f.params)
	return f
}

func (f *submissionFixture) newSession(t *testing.T, userID uint, answersContent string) *QuizSession {
	t.Helper()
	metadata := model.QuizMetadata{Topic: "二次函数", Parameters: model.QuizParameters{Subject: "数学"}}
	session, err := f.telemetry.CreateSession(userID, metadata, testQuestions(), answersContent)
	require.NoError(t, err)
	return session
}

func TestSubmitFullPipeline(t *testing.T) {
	f := newSubmissionFixture()
	session := f.newSession(t, 7, "q1: 2\nq2: 3.14")
	require.NoError(t, f.telemetry.RecordAnswer(session.ID, "q1", "2"))

	outcome, err := f.svc.Submit(context.Background(), session.ID)

	require.NoError(t, err)
	assert.Equal(t, 90.0, outcome.GradingResults.Percentage)
	assert.Equal(t, "🎉", outcome.Encouragement.Emoji)
	require.NotNil(t, outcome.Assessment)
	assert.True(t, outcome.Metadata.HasAssessment)
	assert.Equal(t, 1, outcome.Metadata.AnswersCount)
	assert.True(t, session.Submitted())

	// 画像参数按 90 分档位推导并交接
	f.params.mu.Lock()
	defer f.params.mu.Unlock()
	require.Len(t, f.params.stored, 1)
	assert.Equal(t, "user:7", f.params.scopes[0])
	assert.Equal(t, "高级认知", f.params.stored[0].CognitiveLevel)
	assert.Equal(t, 4, f.params.stored[0].ComplexityLevel)
	assert.Equal(t, "数学", f.params.stored[0].SubjectDomain)
}

func TestSubmitAssessmentFailureNonFatal(t *testing.T) {
	f := newSubmissionFixture()
	f.assessor.err = util.ErrAssessmentTimeout
	session := f.newSession(t, 7, "标准答案")
	require.NoError(t, f.telemetry.RecordAnswer(session.ID, "q1", "2"))

	outcome, err := f.svc.Submit(context.Background(), session.ID)

	require.NoError(t, err)
	assert.Nil(t, outcome.Assessment)
	assert.False(t, outcome.Metadata.HasAssessment)
	assert.NotNil(t, outcome.GradingResults)
	assert.True(t, session.Submitted())

	// 评估失败不写画像参数
	f.params.mu.Lock()
	defer f.params.mu.Unlock()
	assert.Empty(t, f.params.stored)
}

func TestSubmitGradingFailureFatal(t *testing.T) {
	f := newSubmissionFixture()
	f.grader.err = util.ErrGradingTimeout
	session := f.newSession(t, 7, "标准答案")

	outcome, err := f.svc.Submit(context.Background(), session.ID)

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, util.ErrGradingTimeout)
	// 失败的提交可重试
	assert.False(t, session.Submitted())
	assert.Zero(t, f.assessor.callCount())
}

func TestSubmitMissingAnswerKeyRejectedBeforeGrading(t *testing.T) {
	f := newSubmissionFixture()
	session := f.newSession(t, 7, "   ")

	_, err := f.svc.Submit(context.Background(), session.ID)

	assert.ErrorIs(t, err, util.ErrMissingAnswerKey)
	assert.Zero(t, f.grader.callCount())
}

func TestSubmitConcurrentRejected(t *testing.T) {
	f := newSubmissionFixture()
	session := f.newSession(t, 7, "标准答案")

	require.True(t, session.BeginSubmit())
	defer session.EndSubmit()

	_, err := f.svc.Submit(context.Background(), session.ID)
	assert.ErrorIs(t, err, util.ErrSubmissionInProgress)
}

func TestSubmitAlreadySubmittedRejected(t *testing.T) {
	f := newSubmissionFixture()
	session := f.newSession(t, 7, "标准答案")
	session.MarkSubmitted()

	_, err := f.svc.Submit(context.Background(), session.ID)
	assert.ErrorIs(t, err, util.ErrSessionSubmitted)
}

func TestSubmitUnknownSession(t *testing.T) {
	f := newSubmissionFixture()
	_, err := f.svc.Submit(context.Background(), "missing")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestSubmitGuestSkipsAssessment(t *testing.T) {
	f := newSubmissionFixture()
	session := f.newSession(t, 0, "标准答案")
	require.NoError(t, f.telemetry.RecordAnswer(session.ID, "q1", "2"))

	outcome, err := f.svc.Submit(context.Background(), session.ID)

	require.NoError(t, err)
	assert.Nil(t, outcome.Assessment)
	assert.Zero(t, f.assessor.callCount())

	f.params.mu.Lock()
	defer f.params.mu.Unlock()
	assert.Empty(t, f.params.stored)
}

func TestPersistRecordsWritesBoth(t *testing.T) {
	f := newSubmissionFixture()
	session := f.newSession(t, 7, "标准答案")
	grading := sampleGradingResult()

	f.svc.persistRecords(session, grading, f.assessor.report)

	require.Len(t, f.quizRecords.created, 1)
	quizRecord := f.quizRecords.created[0]
	assert.Equal(t, uint(7), quizRecord.UserID)
	assert.Equal(t, "二次函数", quizRecord.Topic)
	assert.Equal(t, 90.0, quizRecord.Score)
	assert.Equal(t, 100.0, quizRecord.MaxScore)
	assert.Equal(t, 1, quizRecord.CorrectCount)
	assert.Equal(t, 2, quizRecord.TotalQuestions)
	assert.NotEmpty(t, quizRecord.QuestionsDetail)

	require.Len(t, f.assessmentRecords.created, 1)
	record := f.assessmentRecords.created[0]
	require.NotNil(t, record.RelatedQuizID)
	assert.Equal(t, quizRecord.ID, *record.RelatedQuizID)
	assert.Equal(t, "高级认知", record.CognitiveLevel)
	assert.Equal(t, "视觉型", record.LearningStyle)
	assert.JSONEq(t, `["细心程度不足"]`, string(record.Suggestions))
	assert.JSONEq(t, `["基础扎实"]`, string(record.Strengths))
	assert.Equal(t, f.assessor.report.Report, record.FullReport)
}

func TestPersistRecordsQuizFailureFallsBackToLatest(t *testing.T) {
	f := newSubmissionFixture()
	f.quizRecords.createErr = errors.New("mysql unavailable")
	f.quizRecords.latest = &model.QuizRecord{BaseModel: model.BaseModel{ID: 42}}
	session := f.newSession(t, 7, "标准答案")

	f.svc.persistRecords(session, sampleGradingResult(), f.assessor.report)

	require.Len(t, f.assessmentRecords.created, 1)
	record := f.assessmentRecords.created[0]
	require.NotNil(t, record.RelatedQuizID)
	assert.Equal(t, uint(42), *record.RelatedQuizID)
}

func TestPersistRecordsNilReportStopsAfterQuizRecord(t *testing.T) {
	f := newSubmissionFixture()
	session := f.newSession(t, 7, "标准答案")

	f.svc.persistRecords(session, sampleGradingResult(), nil)

	assert.Len(t, f.quizRecords.created, 1)
	assert.Empty(t, f.assessmentRecords.created)
}

func TestPersistRecordsTopicFallsBackToSubject(t *testing.T) {
	f := newSubmissionFixture()
	metadata := model.QuizMetadata{Parameters: model.QuizParameters{Subject: "物理"}}
	session, err := f.telemetry.CreateSession(7, metadata, testQuestions(), "标准答案")
	require.NoError(t, err)

	f.svc.persistRecords(session, sampleGradingResult(), nil)

	require.Len(t, f.quizRecords.created, 1)
	assert.Equal(t, "物理", f.quizRecords.created[0].Topic)
}

func TestPersistRecordsAssessmentFailureSwallowed(t *testing.T) {
	f := newSubmissionFixture()
	f.assessmentRecords.createErr = errors.New("mysql unavailable")
	session := f.newSession(t, 7, "标准答案")

	assert.NotPanics(t, func() {
		f.svc.persistRecords(session, sampleGradingResult(), f.assessor.report)
	})
	assert.Len(t, f.quizRecords.created, 1)
}

func TestSubmitMetadataTimestamps(t *testing.T) {
	f := newSubmissionFixture()
	fixed := time.Unix(1700000000, 0)
	f.svc.now = func() time.Time { return fixed }
	session := f.newSession(t, 7, "标准答案")

	outcome, err := f.svc.Submit(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, fixed, outcome.Metadata.GradedAt)
	assert.Equal(t, "二次函数", outcome.Metadata.QuizMetadata.Topic)
}
