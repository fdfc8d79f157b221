package service

import (
	"eduspark_backend/internal/model"
	"eduspark_backend/internal/util"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// QuizSession 一次答题会话的服务端状态。题目注册后不可变，
// 作答遥测为会话内单写者的内存变更。
type QuizSession struct {
	ID             string
	UserID         uint
	Metadata       model.QuizMetadata
	Questions      []model.Question
	AnswersContent string

	mu              sync.Mutex
	questionsByID   map[string]*model.Question
	answers         map[string]*model.AnswerState
	questionOrder   []string
	sessionStart    time.Time
	lastInteraction time.Time
	submitted       bool
	inFlight        int32
}

// BeginSubmit 抢占提交权，同一会话至多一次在途提交
func (s *QuizSession) BeginSubmit() bool {
	return atomic.CompareAndSwapInt32(&s.inFlight, 0, 1)
}

func (s *QuizSession) EndSubmit() {
	atomic.StoreInt32(&s.inFlight, 0)
}

func (s *QuizSession) MarkSubmitted() {
	s.mu.Lock()
	s.submitted = true
	s.mu.Unlock()
}

func (s *QuizSession) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// 会话留存上限。已提交的会话短暂保留以便重复提交得到明确拒绝，
// 弃答的会话按最后交互时间过期。
const (
	sessionIdleTTL     = 2 * time.Hour
	submittedRetention = 10 * time.Minute
)

type TelemetryService struct {
	mu       sync.RWMutex
	sessions map[string]*QuizSession
	now      func() time.Time
}

func NewTelemetryService() *TelemetryService {
	t := &TelemetryService{
		sessions: make(map[string]*QuizSession),
		now:      time.Now,
	}
	go t.janitor()
	return t
}

func (t *TelemetryService) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		t.evictStale(time.Now())
	}
}

func (t *TelemetryService) evictStale(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, session := range t.sessions {
		session.mu.Lock()
		last := session.lastInteraction
		submitted := session.submitted
		session.mu.Unlock()

		ttl := sessionIdleTTL
		if submitted {
			ttl = submittedRetention
		}
		if now.Sub(last) > ttl {
			delete(t.sessions, id)
		}
	}
}

func (t *TelemetryService) CreateSession(userID uint, metadata model.QuizMetadata, questions []model.Question, answersContent string) (*QuizSession, error) {
	if len(questions) == 0 {
		return nil, util.ErrMissingQuestions
	}

	byID := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	session := &QuizSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		Metadata:       metadata,
		Questions:      questions,
		AnswersContent: answersContent,
		questionsByID:  byID,
		answers:        make(map[string]*model.AnswerState),
		sessionStart:   t.now(),
	}
	session.lastInteraction = session.sessionStart

	t.mu.Lock()
	t.sessions[session.ID] = session
	t.mu.Unlock()

	return session, nil
}

func (t *TelemetryService) GetSession(id string) (*QuizSession, error) {
	t.mu.RLock()
	session, ok := t.sessions[id]
	t.mu.RUnlock()
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return session, nil
}

// Touch 首次触达：记录起始时间并追加触达顺序，重复调用为幂等空操作。
// 不增加修改次数。
func (t *TelemetryService) Touch(sessionID, questionID string) error {
	session, err := t.GetSession(sessionID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.submitted {
		return util.ErrSessionSubmitted
	}
	if _, ok := session.questionsByID[questionID]; !ok {
		return util.ErrUnknownQuestion
	}

	now := t.now()
	session.lastInteraction = now

	if _, touched := session.answers[questionID]; !touched {
		session.answers[questionID] = &model.AnswerState{StartTime: now}
		session.questionOrder = append(session.questionOrder, questionID)
	}
	return nil
}

// RecordAnswer 记录一次被接受的值变化。选择题任何变化都计一次修改；
// 填空题只有长度差超过1或清空时才计，避免把逐字输入当成“改主意”。
func (t *TelemetryService) RecordAnswer(sessionID, questionID, value string) error {
	session, err := t.GetSession(sessionID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.submitted {
		return util.ErrSessionSubmitted
	}
	question, ok := session.questionsByID[questionID]
	if !ok {
		return util.ErrUnknownQuestion
	}

	now := t.now()
	session.lastInteraction = now

	state, touched := session.answers[questionID]
	if !touched {
		state = &model.AnswerState{StartTime: now}
		session.answers[questionID] = state
		session.questionOrder = append(session.questionOrder, questionID)
	}

	prev := state.CurrentValue
	if value == prev && state.ModificationCount > 0 {
		return nil
	}

	if state.ModificationCount == 0 {
		// 首次接受值，修改次数从此处起至少为1且只增不减
		state.ModificationCount = 1
	} else if question.IsChoice() {
		state.ModificationCount++
	} else if isDeliberateEdit(prev, value) {
		state.ModificationCount++
	}

	state.CurrentValue = value
	return nil
}

// isDeliberateEdit 填空题的修改启发式
func isDeliberateEdit(prev, next string) bool {
	if strings.TrimSpace(next) == "" && strings.TrimSpace(prev) != "" {
		return true
	}
	delta := len([]rune(next)) - len([]rune(prev))
	if delta < 0 {
		delta = -delta
	}
	return delta > 1
}

// BuildSubmission 在提交时刻冻结遥测数据，构建不可变的提交聚合
func (t *TelemetryService) BuildSubmission(session *QuizSession) model.QuizSubmission {
	session.mu.Lock()
	defer session.mu.Unlock()

	now := t.now()
	totalDuration := now.Sub(session.sessionStart).Milliseconds()

	answers := make(map[string]string, len(session.answers))
	timing := make(map[string]int64, len(session.answers))
	modifications := make(map[string]int, len(session.answers))
	startTimes := make(map[string]int64, len(session.answers))

	for qid, state := range session.answers {
		answers[qid] = state.CurrentValue
		timing[qid] = now.Sub(state.StartTime).Milliseconds()
		modifications[qid] = state.ModificationCount
		startTimes[qid] = state.StartTime.UnixMilli()
	}

	totalQuestions := len(session.Questions)
	completionRate := 0.0
	if totalQuestions > 0 {
		completionRate = float64(len(answers)) / float64(totalQuestions)
	}
	avgTime := 0.0
	if len(answers) > 0 {
		avgTime = float64(totalDuration) / float64(len(answers))
	}

	order := make([]string, len(session.questionOrder))
	copy(order, session.questionOrder)

	return model.QuizSubmission{
		Answers:          answers,
		TimingData:       timing,
		ModificationData: modifications,
		BehaviorData: model.BehaviorData{
			TotalStartTime:      session.sessionStart.UnixMilli(),
			QuestionOrder:       order,
			LastInteractionTime: session.lastInteraction.UnixMilli(),
			TotalDuration:       totalDuration,
			CompletionTime:      now.UnixMilli(),
		},
		QuestionStartTimes: startTimes,
		Metadata: model.SubmissionMetadata{
			TotalQuestions:         totalQuestions,
			CompletionRate:         completionRate,
			AverageTimePerQuestion: avgTime,
		},
	}
}
