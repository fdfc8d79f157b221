package model

import "encoding/json"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	FillBlank      QuestionType = "fill_blank"
)

// Question 生成试卷中的单题，试卷注册后不再变更
type Question struct {
	ID              string       `json:"id"`
	Prompt          string       `json:"prompt"`
	Type            QuestionType `json:"type"`
	Options         []string     `json:"options,omitempty"` // 仅选择题
	CorrectAnswer   string       `json:"correct_answer"`
	KnowledgePoints []string     `json:"knowledge_points"`
	Explanation     string       `json:"explanation"`
}

// IsChoice 选择题的任何值变化都计为一次修改，填空题走长度启发式
func (q *Question) IsChoice() bool {
	return q.Type == MultipleChoice
}

type QuizParameters struct {
	Subject           string `json:"subject"`
	GradeLevel        string `json:"grade_level"`
	SelfAssessedLevel string `json:"self_assessed_level,omitempty"`
	LearningGoal      string `json:"learning_goal,omitempty"`
}

// swagger:model QuizMetadata
type QuizMetadata struct {
	Topic      string         `json:"topic,omitempty"`
	Parameters QuizParameters `json:"parameters"`
}

// QuizRecord 测验成绩记录
type QuizRecord struct {
	BaseModel
	UserID          uint            `gorm:"index;type:bigint unsigned" json:"userId"`
	Topic           string          `gorm:"size:255" json:"topic"`
	Score           float64         `json:"score"`
	MaxScore        float64         `json:"maxScore"`
	CorrectCount    int             `json:"correctCount"`
	TotalQuestions  int             `json:"totalQuestions"`
	QuestionsDetail json.RawMessage `gorm:"type:json" json:"questionsDetail"`
}

func (QuizRecord) TableName() string {
	return "quiz_records"
}
