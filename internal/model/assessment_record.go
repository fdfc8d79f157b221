package model

import "encoding/json"

// AssessmentRecord 学习者评估记录，suggestions 保存反馈中的不足项
type AssessmentRecord struct {
	BaseModel
	UserID         uint            `gorm:"index;type:bigint unsigned" json:"userId"`
	RelatedQuizID  *uint           `gorm:"index;type:bigint unsigned" json:"relatedQuizId"`
	CognitiveLevel string          `gorm:"size:20" json:"cognitiveLevel"`
	LearningStyle  string          `gorm:"size:20" json:"learningStyle"`
	KnowledgeGaps  json.RawMessage `gorm:"type:json" json:"knowledgeGaps"`
	Strengths      json.RawMessage `gorm:"type:json" json:"strengths"`
	Suggestions    json.RawMessage `gorm:"type:json" json:"suggestions"`
	FullReport     string          `gorm:"type:longtext" json:"fullReport"`
}

func (AssessmentRecord) TableName() string {
	return "assessment_records"
}
