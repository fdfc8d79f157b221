package service

import (
	"eduspark_backend/internal/model"
	"fmt"
	"strings"
)

// 分档阈值表。按序求值，取首个 score >= min 的档位，
// 边界值（恰好60、80、0.9）落入更高档。
type scoreBand struct {
	min   float64
	label string
}

var cognitiveLevelBands = []scoreBand{
	{80, "高级认知"},
	{60, "中级认知"},
	{0, "初级认知"},
}

var priorKnowledgeBands = []scoreBand{
	{80, "深入"},
	{60, "中等"},
	{0, "基础"},
}

type complexityBand struct {
	min   float64
	level int
}

var complexityBands = []complexityBand{
	{80, 4},
	{60, 3},
	{0, 2},
}

func pickBand(bands []scoreBand, score float64) string {
	for _, b := range bands {
		if score >= b.min {
			return b.label
		}
	}
	return bands[len(bands)-1].label
}

func pickComplexity(score float64) int {
	for _, b := range complexityBands {
		if score >= b.min {
			return b.level
		}
	}
	return complexityBands[len(complexityBands)-1].level
}

func pickLearningStyle(modificationCount int) string {
	switch {
	case modificationCount > 5:
		return "文本型"
	case modificationCount > 2:
		return "应用型"
	default:
		return "视觉型"
	}
}

func pickMotivationType(completionRate, score float64) string {
	switch {
	case completionRate >= 0.9:
		return "任务导向"
	case score >= 80:
		return "成就导向"
	default:
		return "兴趣驱动"
	}
}

// CognitiveLevelLabel 将评估结构数据里的英文档位映射为展示标签
func CognitiveLevelLabel(level string) string {
	switch level {
	case "advanced":
		return "高级认知"
	case "intermediate":
		return "中级认知"
	case "basic":
		return "初级认知"
	}
	return level
}

// gapKnowledgePoints 汇总错题知识点，去重并保持出现顺序
func gapKnowledgePoints(gaps []model.KnowledgeGap) []string {
	seen := make(map[string]bool)
	var points []string
	for _, gap := range gaps {
		for _, kp := range gap.KnowledgePoints {
			kp = strings.TrimSpace(kp)
			if kp == "" || seen[kp] {
				continue
			}
			seen[kp] = true
			points = append(points, kp)
		}
	}
	return points
}

// DeriveProfileParams 由评估结构数据派生学习者画像参数。
// 纯函数：相同输入产生逐字节相同的输出，无 I/O、无随机。
func DeriveProfileParams(data model.StructuredData, subject string) model.LearnerProfileParams {
	score := data.OverallPerformance.Score
	completionRate := data.OverallPerformance.CompletionRate
	modificationCount := data.LearningPatterns.ModificationCount

	points := gapKnowledgePoints(data.KnowledgeGaps)
	fallback := fmt.Sprintf("%s核心概念", subject)

	knowledgePoint := fallback
	prerequisites := fallback
	if len(points) > 0 {
		knowledgePoint = points[0]
		if len(points) > 3 {
			points = points[:3]
		}
		prerequisites = strings.Join(points, "、")
	}

	return model.LearnerProfileParams{
		CognitiveLevel:       pickBand(cognitiveLevelBands, score),
		PriorKnowledge:       pickBand(priorKnowledgeBands, score),
		LearningStyle:        pickLearningStyle(modificationCount),
		MotivationType:       pickMotivationType(completionRate, score),
		KnowledgePoint:       knowledgePoint,
		SubjectDomain:        subject,
		PrerequisiteConcepts: prerequisites,
		ConceptType:          "概念型",
		ComplexityLevel:      pickComplexity(score),
		LearningObjective:    "理解",
	}
}

// ExtractLearningStyle 在结构化数据缺少学习风格时，从报告文本中回捞风格标签
func ExtractLearningStyle(report string) string {
	for _, style := range []string{"视觉型", "文本型", "应用型", "社交型"} {
		if strings.Contains(report, style) {
			return style
		}
	}
	return ""
}
