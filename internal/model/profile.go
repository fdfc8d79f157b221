package model

// LearnerProfileParams 交给内容生成消费方的学习者画像参数
type LearnerProfileParams struct {
	CognitiveLevel       string `json:"cognitiveLevel"`       // 初级认知/中级认知/高级认知
	PriorKnowledge       string `json:"priorKnowledge"`       // 基础/中等/深入
	LearningStyle        string `json:"learningStyle"`        // 视觉型/文本型/应用型/社交型
	MotivationType       string `json:"motivationType"`       // 任务导向/兴趣驱动/成就导向
	KnowledgePoint       string `json:"knowledgePoint"`
	SubjectDomain        string `json:"subjectDomain"`
	PrerequisiteConcepts string `json:"prerequisiteConcepts"`
	ConceptType          string `json:"conceptType"`
	ComplexityLevel      int    `json:"complexityLevel"` // 1-5
	LearningObjective    string `json:"learningObjective"`
}
