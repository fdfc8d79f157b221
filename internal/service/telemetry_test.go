package service

import (
	"eduspark_backend/internal/model"
	"eduspark_backend/internal/util"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eduspark_backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func testQuestions() []model.Question {
	return []model.Question{
		{ID: "q1", Prompt: "1+1=?", Type: model.MultipleChoice, Options: []string{"1", "2"}, CorrectAnswer: "2", KnowledgePoints: []string{"加法"}},
		{ID: "q2", Prompt: "圆周率约等于____", Type: model.FillBlank, CorrectAnswer: "3.14", KnowledgePoints: []string{"圆"}},
		{ID: "q3", Prompt: "2*3=?", Type: model.MultipleChoice, Options: []string{"5", "6"}, CorrectAnswer: "6", KnowledgePoints: []string{"乘法"}},
	}
}

func newTestTelemetry(start time.Time) (*TelemetryService, *time.Time) {
	clock := start
	svc := NewTelemetryService()
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func TestCreateSessionRequiresQuestions(t *testing.T) {
	svc := NewTelemetryService()
	_, err := svc.CreateSession(1, model.QuizMetadata{}, nil, "答案")
	assert.ErrorIs(t, err, util.ErrMissingQuestions)
}

func TestFirstTouchIdempotent(t *testing.T) {
	svc, clock := newTestTelemetry(time.Unix(1000, 0))
	session, err := svc.CreateSession(1, model.QuizMetadata{}, testQuestions(), "答案")
	require.NoError(t, err)

	require.NoError(t, svc.Touch(session.ID, "q2"))
	firstStart := session.answers["q2"].StartTime

	*clock = clock.Add(5 * time.Second)
	require.NoError(t, svc.Touch(session.ID, "q2"))

	// 起始时间与触达顺序不因重复触达而变化
	assert.Equal(t, firstStart, session.answers["q2"].StartTime)
	assert.Equal(t, []string{"q2"}, session.questionOrder)
	// 单纯触达不产生修改计数
	assert.Equal(t, 0, session.answers["q2"].ModificationCount)
	// 但更新最后交互时间
	assert.Equal(t, *clock, session.lastInteraction)
}

func TestQuestionOrderFollowsFirstTouch(t *testing.T) {
	svc, _ := newTestTelemetry(time.Unix(1000, 0))
	session, _ := svc.CreateSession(1, model.QuizMetadata{}, testQuestions(), "答案")

	require.NoError(t, svc.Touch(session.ID, "q3"))
	require.NoError(t, svc.Touch(session.ID, "q1"))
	require.NoError(t, svc.RecordAnswer(session.ID, "q2", "3.14"))

	assert.Equal(t, []string{"q3", "q1", "q2"}, session.questionOrder)
}

func TestModificationCountChoice(t *testing.T) {
	svc, _ := newTestTelemetry(time.Unix(1000, 0))
	session, _ := svc.CreateSession(1, model.QuizMetadata{}, testQuestions(), "答案")

	require.NoError(t, svc.RecordAnswer(session.ID, "q1", "1"))
	assert.Equal(t, 1, session.answers["q1"].ModificationCount)

	// 选择题的任何值变化都计一次
	require.NoError(t, svc.RecordAnswer(session.ID, "q1", "2"))
	assert.Equal(t, 2, session.answers["q1"].ModificationCount)

	// 相同值不计
	require.NoError(t, svc.RecordAnswer(session.ID, "q1", "2"))
	assert.Equal(t, 2, session.answers["q1"].ModificationCount)
}

func TestModificationCountFreeText(t *testing.T) {
	svc, _ := newTestTelemetry(time.Unix(1000, 0))
	session, _ := svc.CreateSession(1, model.QuizMetadata{}, testQuestions(), "答案")

	require.NoError(t, svc.RecordAnswer(session.ID, "q2", "3"))
	assert.Equal(t, 1, session.answers["q2"].ModificationCount)

	// 逐字输入（长度差1）不算改主意
	require.NoError(t, svc.RecordAnswer(session.ID, "q2", "3."))
	require.NoError(t, svc.RecordAnswer(session.ID, "q2", "3.1"))
	require.NoError(t, svc.RecordAnswer(session.ID, "q2", "3.14"))
	assert.Equal(t, 1, session.answers["q2"].ModificationCount)

	// 清空算一次刻意修改
	require.NoError(t, svc.RecordAnswer(session.ID, "q2", ""))
	assert.Equal(t, 2, session.answers["q2"].ModificationCount)

	// 粘贴式长输入（长度差>1）算一次
	require.NoError(t, svc.RecordAnswer(session.ID, "q2", "3.14159"))
	assert.Equal(t, 3, session.answers["q2"].ModificationCount)
}

func TestModificationCountNonDecreasing(t *testing.T) {
	svc, _ := newTestTelemetry(time.Unix(1000, 0))
	session, _ := svc.CreateSession(1, model.QuizMetadata{}, testQuestions(), "答案")

	values := []string{"a", "ab", "abc", "", "xyz", "xyz", "x"}
	prev := 0
	for _, v := range values {
		require.NoError(t, svc.RecordAnswer(session.ID, "q2", v))
		count := session.answers["q2"].ModificationCount
		assert.GreaterOrEqual(t, count, prev)
		assert.GreaterOrEqual(t, count, 1)
		prev = count
	}
}

func TestBuildSubmissionFreeze(t *testing.T) {
	svc, clock := newTestTelemetry(time.Unix(1000, 0))
	session, _ := svc.CreateSession(1, model.QuizMetadata{}, testQuestions(), "答案")

	*clock = clock.Add(10 * time.Second)
	require.NoError(t, svc.RecordAnswer(session.ID, "q1", "2"))

	*clock = clock.Add(20 * time.Second)
	require.NoError(t, svc.RecordAnswer(session.ID, "q2", "3.14"))

	*clock = clock.Add(30 * time.Second)
	sub := svc.BuildSubmission(session)

	assert.Equal(t, map[string]string{"q1": "2", "q2": "3.14"}, sub.Answers)
	assert.Equal(t, 3, sub.Metadata.TotalQuestions)
	assert.InDelta(t, 2.0/3.0, sub.Metadata.CompletionRate, 1e-9)
	assert.GreaterOrEqual(t, sub.Metadata.CompletionRate, 0.0)
	assert.LessOrEqual(t, sub.Metadata.CompletionRate, 1.0)

	// 每题耗时 = 提交时刻 - 首次触达
	assert.Equal(t, int64(50000), sub.TimingData["q1"])
	assert.Equal(t, int64(30000), sub.TimingData["q2"])

	assert.Equal(t, int64(60000), sub.BehaviorData.TotalDuration)
	assert.InDelta(t, 30000.0, sub.Metadata.AverageTimePerQuestion, 1e-9)
	assert.Equal(t, []string{"q1", "q2"}, sub.BehaviorData.QuestionOrder)
	assert.Equal(t, map[string]int{"q1": 1, "q2": 1}, sub.ModificationData)
}

func TestBuildSubmissionNoAnswers(t *testing.T) {
	svc, _ := newTestTelemetry(time.Unix(1000, 0))
	session, _ := svc.CreateSession(1, model.QuizMetadata{}, testQuestions(), "答案")

	sub := svc.BuildSubmission(session)
	assert.Zero(t, sub.Metadata.CompletionRate)
	assert.Zero(t, sub.Metadata.AverageTimePerQuestion)
	assert.Empty(t, sub.Answers)
}

func TestTelemetryRejectsSubmittedSession(t *testing.T) {
	svc, _ := newTestTelemetry(time.Unix(1000, 0))
	session, _ := svc.CreateSession(1, model.QuizMetadata{}, testQuestions(), "答案")

	session.MarkSubmitted()

	assert.ErrorIs(t, svc.Touch(session.ID, "q1"), util.ErrSessionSubmitted)
	assert.ErrorIs(t, svc.RecordAnswer(session.ID, "q1", "2"), util.ErrSessionSubmitted)
}

func TestTelemetryUnknownSessionAndQuestion(t *testing.T) {
	svc, _ := newTestTelemetry(time.Unix(1000, 0))
	session, _ := svc.CreateSession(1, model.QuizMetadata{}, testQuestions(), "答案")

	assert.ErrorIs(t, svc.Touch("missing", "q1"), util.ErrSessionNotFound)

	// 会话存在但题目不属于它，错误应能区分于会话缺失
	assert.ErrorIs(t, svc.Touch(session.ID, "q99"), util.ErrUnknownQuestion)
	assert.ErrorIs(t, svc.RecordAnswer(session.ID, "q99", "2"), util.ErrUnknownQuestion)
}

func TestEvictStaleSessions(t *testing.T) {
	start := time.Unix(1000, 0)
	svc, _ := newTestTelemetry(start)

	submitted, _ := svc.CreateSession(1, model.QuizMetadata{}, testQuestions(), "答案")
	submitted.MarkSubmitted()
	active, _ := svc.CreateSession(2, model.QuizMetadata{}, testQuestions(), "答案")

	// 已提交会话在留存窗口后清除，未提交会话保留
	svc.evictStale(start.Add(submittedRetention + time.Minute))
	_, err := svc.GetSession(submitted.ID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
	_, err = svc.GetSession(active.ID)
	require.NoError(t, err)

	// 弃答会话按空闲时长过期
	svc.evictStale(start.Add(sessionIdleTTL + time.Minute))
	_, err = svc.GetSession(active.ID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}
