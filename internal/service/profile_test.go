package service

import (
	"eduspark_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func structuredDataWith(score, completionRate float64, modificationCount int, gaps []model.KnowledgeGap) model.StructuredData {
	return model.StructuredData{
		OverallPerformance: model.OverallPerformance{
			Score:          score,
			CompletionRate: completionRate,
		},
		LearningPatterns: model.LearningPatterns{
			ModificationCount: modificationCount,
		},
		KnowledgeGaps: gaps,
	}
}

func TestDeriveProfileParamsBoundaries(t *testing.T) {
	tests := []struct {
		name           string
		score          float64
		cognitiveLevel string
		priorKnowledge string
		complexity     int
	}{
		{"恰好80落入高档", 80, "高级认知", "深入", 4},
		{"恰好60落入中档", 60, "中级认知", "中等", 3},
		{"59.999落入低档", 59.999, "初级认知", "基础", 2},
		{"满分", 100, "高级认知", "深入", 4},
		{"零分", 0, "初级认知", "基础", 2},
		{"79.999不进高档", 79.999, "中级认知", "中等", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DeriveProfileParams(structuredDataWith(tt.score, 1.0, 1, nil), "数学")
			assert.Equal(t, tt.cognitiveLevel, params.CognitiveLevel)
			assert.Equal(t, tt.priorKnowledge, params.PriorKnowledge)
			assert.Equal(t, tt.complexity, params.ComplexityLevel)
		})
	}
}

func TestDeriveProfileParamsLearningStyle(t *testing.T) {
	tests := []struct {
		modifications int
		style         string
	}{
		{0, "视觉型"},
		{2, "视觉型"},
		{3, "应用型"},
		{5, "应用型"},
		{6, "文本型"},
	}

	for _, tt := range tests {
		params := DeriveProfileParams(structuredDataWith(70, 1.0, tt.modifications, nil), "数学")
		assert.Equal(t, tt.style, params.LearningStyle, "modifications=%d", tt.modifications)
	}
}

func TestDeriveProfileParamsMotivationType(t *testing.T) {
	// 完成率恰好0.9落入任务导向
	assert.Equal(t, "任务导向", DeriveProfileParams(structuredDataWith(50, 0.9, 1, nil), "数学").MotivationType)
	// 完成率不足时高分转成就导向
	assert.Equal(t, "成就导向", DeriveProfileParams(structuredDataWith(85, 0.5, 1, nil), "数学").MotivationType)
	assert.Equal(t, "兴趣驱动", DeriveProfileParams(structuredDataWith(50, 0.5, 1, nil), "数学").MotivationType)
}

func TestDeriveProfileParamsKnowledgeGaps(t *testing.T) {
	gaps := []model.KnowledgeGap{
		{KnowledgePoints: []string{"一元二次方程", "因式分解"}},
		{KnowledgePoints: []string{"因式分解", "配方法", "判别式"}},
	}

	params := DeriveProfileParams(structuredDataWith(70, 1.0, 1, gaps), "数学")
	assert.Equal(t, "一元二次方程", params.KnowledgePoint)
	// 去重后至多取前三个
	assert.Equal(t, "一元二次方程、因式分解、配方法", params.PrerequisiteConcepts)
}

func TestDeriveProfileParamsGapFallback(t *testing.T) {
	params := DeriveProfileParams(structuredDataWith(95, 1.0, 1, nil), "物理")
	assert.Equal(t, "物理核心概念", params.KnowledgePoint)
	assert.Equal(t, "物理核心概念", params.PrerequisiteConcepts)
	assert.Equal(t, "物理", params.SubjectDomain)
	assert.Equal(t, "概念型", params.ConceptType)
	assert.Equal(t, "理解", params.LearningObjective)
}

func TestDeriveProfileParamsDeterministic(t *testing.T) {
	data := structuredDataWith(73.5, 0.8, 4, []model.KnowledgeGap{{KnowledgePoints: []string{"牛顿第二定律"}}})
	first := DeriveProfileParams(data, "物理")
	second := DeriveProfileParams(data, "物理")
	assert.Equal(t, first, second)
}

func TestExtractLearningStyle(t *testing.T) {
	assert.Equal(t, "视觉型", ExtractLearningStyle("主导学习风格：视觉型"))
	assert.Equal(t, "应用型", ExtractLearningStyle("偏好应用型学习"))
	assert.Equal(t, "", ExtractLearningStyle("没有风格信息"))
}

func TestCognitiveLevelLabel(t *testing.T) {
	assert.Equal(t, "高级认知", CognitiveLevelLabel("advanced"))
	assert.Equal(t, "中级认知", CognitiveLevelLabel("intermediate"))
	assert.Equal(t, "初级认知", CognitiveLevelLabel("basic"))
}
