package model

import "time"

// QuestionDetail 批改服务返回的单题明细
type QuestionDetail struct {
	QuestionID      string   `json:"question_id"`
	StudentAnswer   string   `json:"student_answer"`
	CorrectAnswer   string   `json:"correct_answer"`
	IsCorrect       bool     `json:"is_correct"`
	Score           float64  `json:"score"`
	MaxScore        float64  `json:"max_score"`
	Explanation     string   `json:"explanation"`
	KnowledgePoints []string `json:"knowledge_points"`
}

type OverallFeedback struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Suggestions   []string `json:"suggestions"`
	Encouragement string   `json:"encouragement,omitempty"`
}

// swagger:model GradingResult
type GradingResult struct {
	TotalScore      float64          `json:"total_score"`
	MaxScore        float64          `json:"max_score"`
	Percentage      float64          `json:"percentage"`
	GradeLevel      string           `json:"grade_level"` // 优秀/良好/及格/需要加强
	QuestionDetails []QuestionDetail `json:"question_details"`
	OverallFeedback OverallFeedback  `json:"overall_feedback"`
}

// CorrectCount 答对题数
func (g *GradingResult) CorrectCount() int {
	count := 0
	for _, q := range g.QuestionDetails {
		if q.IsCorrect {
			count++
		}
	}
	return count
}

// Encouragement 按正确率分档的鼓励信息
type Encouragement struct {
	Emoji   string `json:"emoji"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Color   string `json:"color"`
	BgColor string `json:"bgColor"`
}

// SubmitMetadata 提交流水线结果的元信息
type SubmitMetadata struct {
	GradedAt      time.Time    `json:"graded_at"`
	QuizMetadata  QuizMetadata `json:"quiz_metadata"`
	AnswersCount  int          `json:"answers_count"`
	HasAssessment bool         `json:"has_assessment"`
}

// SubmissionOutcome 流水线的最终结果。批改必定存在，评估可缺席
type SubmissionOutcome struct {
	GradingResults *GradingResult    `json:"grading_results"`
	Encouragement  Encouragement     `json:"encouragement"`
	Assessment     *AssessmentReport `json:"assessment,omitempty"`
	Metadata       SubmitMetadata    `json:"metadata"`
}
