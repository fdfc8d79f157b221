package model

import "time"

// AnswerState 单题作答状态，首次交互时惰性创建，提交后冻结
type AnswerState struct {
	CurrentValue      string    `json:"current_value"`
	StartTime         time.Time `json:"start_time"`
	ModificationCount int       `json:"modification_count"`
}

// BehaviorData 会话级行为数据，时间均为毫秒时间戳
type BehaviorData struct {
	TotalStartTime      int64    `json:"totalStartTime"`
	QuestionOrder       []string `json:"questionOrder"` // 首次触达顺序，可能与展示顺序不同
	LastInteractionTime int64    `json:"lastInteractionTime"`
	TotalDuration       int64    `json:"totalDuration"`
	CompletionTime      int64    `json:"completionTime"`
}

type SubmissionMetadata struct {
	TotalQuestions         int     `json:"total_questions"`
	CompletionRate         float64 `json:"completion_rate"`
	AverageTimePerQuestion float64 `json:"average_time_per_question"`
}

// QuizSubmission 提交时一次性构建，之后不可变
type QuizSubmission struct {
	Answers            map[string]string  `json:"answers"`
	TimingData         map[string]int64   `json:"timing_data"`
	BehaviorData       BehaviorData       `json:"behavior_data"`
	ModificationData   map[string]int     `json:"modification_data"`
	QuestionStartTimes map[string]int64   `json:"question_start_times"`
	Metadata           SubmissionMetadata `json:"metadata"`
}
