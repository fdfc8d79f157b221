package model

import "time"

type OverallPerformance struct {
	Score                  float64 `json:"score"`
	Grade                  string  `json:"grade"`
	CompletionRate         float64 `json:"completion_rate"`
	TotalTime              int64   `json:"total_time"`
	AverageTimePerQuestion float64 `json:"average_time_per_question"`
}

type CognitiveAssessment struct {
	Level        string `json:"level"` // basic/intermediate/advanced
	CorrectCount int    `json:"correct_count"`
	TotalCount   int    `json:"total_count"`
}

type LearningPatterns struct {
	ModificationCount int              `json:"modification_count"`
	QuestionOrder     []string         `json:"question_order"`
	TimingPattern     map[string]int64 `json:"timing_pattern"`
}

type KnowledgeGap struct {
	KnowledgePoints []string `json:"knowledge_points"`
	ErrorType       string   `json:"error_type"`
}

// StructuredData 由批改结果与提交数据确定性计算，与 raw 报告文本相互独立
type StructuredData struct {
	OverallPerformance  OverallPerformance  `json:"overall_performance"`
	CognitiveAssessment CognitiveAssessment `json:"cognitive_assessment"`
	LearningPatterns    LearningPatterns    `json:"learning_patterns"`
	KnowledgeGaps       []KnowledgeGap      `json:"knowledge_gaps"`
	Strengths           []string            `json:"strengths"`
	Weaknesses          []string            `json:"weaknesses"`
}

type DataCompleteness struct {
	HasTimingData       bool `json:"has_timing_data"`
	HasBehaviorData     bool `json:"has_behavior_data"`
	HasModificationData bool `json:"has_modification_data"`
	QuestionCount       int  `json:"question_count"`
}

type AssessmentMetadata struct {
	AssessedAt       time.Time        `json:"assessed_at"`
	AssessmentModel  string           `json:"assessment_model"`
	DataCompleteness DataCompleteness `json:"data_completeness"`
}

// swagger:model AssessmentReport
type AssessmentReport struct {
	Report         string             `json:"report"`
	StructuredData StructuredData     `json:"structured_data"`
	Sections       map[string]string  `json:"sections,omitempty"`
	Metadata       AssessmentMetadata `json:"metadata"`
}
