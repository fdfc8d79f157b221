package service

import (
	"context"
	"eduspark_backend/internal/config"
	"eduspark_backend/internal/model"
	"eduspark_backend/internal/util"
	"eduspark_backend/pkg/monitoring"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

type AssessmentService struct {
	ai  completionClient
	mu  sync.RWMutex
	cfg config.AIConfig
	now func() time.Time
}

func NewAssessmentService(ai completionClient, cfg config.AIConfig) *AssessmentService {
	return &AssessmentService{ai: ai, cfg: cfg, now: time.Now}
}

// UpdateConfig 配置热更新时替换评估阶段配置
func (s *AssessmentService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *AssessmentService) timeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.AssessmentTimeout
}

// Assess 生成学习者模型报告。与批改不同，本阶段失败非致命：
// 调用方记录警告后跳过，提交整体仍视为成功。
func (s *AssessmentService) Assess(ctx context.Context, metadata model.QuizMetadata, grading *model.GradingResult, submission model.QuizSubmission) (*model.AssessmentReport, error) {
	systemPrompt := buildAssessmentSystemPrompt(metadata, grading, submission)
	content := buildAssessmentContent(metadata, grading, submission)

	start := time.Now()
	raw, err := s.ai.Complete(ctx, s.timeout(), systemPrompt, content)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			monitoring.ObserveStage("assessment", "timeout", elapsed)
			return nil, util.ErrAssessmentTimeout
		}
		monitoring.ObserveStage("assessment", "error", elapsed)
		return nil, fmt.Errorf("%w: %v", util.ErrAssessmentService, err)
	}

	if strings.TrimSpace(raw) == "" {
		monitoring.ObserveStage("assessment", "error", elapsed)
		return nil, util.ErrAssessmentService
	}

	monitoring.ObserveStage("assessment", "ok", elapsed)

	report := &model.AssessmentReport{
		Report:         raw,
		StructuredData: BuildStructuredData(grading, submission),
		Sections:       ParseSections(raw, ReportHeadings),
		Metadata: model.AssessmentMetadata{
			AssessedAt:      s.now(),
			AssessmentModel: "EduAnalyst",
			DataCompleteness: model.DataCompleteness{
				HasTimingData:       len(submission.TimingData) > 0,
				HasBehaviorData:     submission.BehaviorData.TotalStartTime > 0,
				HasModificationData: len(submission.ModificationData) > 0,
				QuestionCount:       len(grading.QuestionDetails),
			},
		},
	}
	return report, nil
}

// BuildStructuredData 由批改结果与提交数据确定性计算结构化评估数据。
// 与报告文本相互独立，二者之间只有尽力而为的一致性。
func BuildStructuredData(grading *model.GradingResult, submission model.QuizSubmission) model.StructuredData {
	totalModifications := 0
	for _, count := range submission.ModificationData {
		totalModifications += count
	}

	level := "basic"
	if grading.Percentage >= 80 {
		level = "advanced"
	} else if grading.Percentage >= 60 {
		level = "intermediate"
	}

	var gaps []model.KnowledgeGap
	for _, q := range grading.QuestionDetails {
		if q.IsCorrect {
			continue
		}
		gaps = append(gaps, model.KnowledgeGap{
			KnowledgePoints: q.KnowledgePoints,
			ErrorType:       q.Explanation,
		})
	}

	return model.StructuredData{
		OverallPerformance: model.OverallPerformance{
			Score:                  grading.Percentage,
			Grade:                  grading.GradeLevel,
			CompletionRate:         submission.Metadata.CompletionRate,
			TotalTime:              submission.BehaviorData.TotalDuration,
			AverageTimePerQuestion: submission.Metadata.AverageTimePerQuestion,
		},
		CognitiveAssessment: model.CognitiveAssessment{
			Level:        level,
			CorrectCount: grading.CorrectCount(),
			TotalCount:   len(grading.QuestionDetails),
		},
		LearningPatterns: model.LearningPatterns{
			ModificationCount: totalModifications,
			QuestionOrder:     submission.BehaviorData.QuestionOrder,
			TimingPattern:     submission.TimingData,
		},
		KnowledgeGaps: gaps,
		Strengths:     grading.OverallFeedback.Strengths,
		Weaknesses:    grading.OverallFeedback.Weaknesses,
	}
}

func buildAssessmentSystemPrompt(metadata model.QuizMetadata, grading *model.GradingResult, submission model.QuizSubmission) string {
	subject := metadata.Parameters.Subject
	if subject == "" {
		subject = "学科"
	}

	totalModifications := 0
	for _, count := range submission.ModificationData {
		totalModifications += count
	}

	orderKind := "线性"
	if len(submission.BehaviorData.QuestionOrder) > 0 {
		orderKind = "非线性"
	}

	avgSeconds := int64(submission.Metadata.AverageTimePerQuestion) / 1000
	completionPct := int(submission.Metadata.CompletionRate*100 + 0.5)

	var b strings.Builder
	b.WriteString("您是\"EduAnalyst\"，一个专业的学习者评估系统。您的任务是根据学习者的答题数据，生成全面的学习者模型和评估报告，为个性化学习内容生成提供基础。\n\n")

	b.WriteString("## 分析维度\n\n")
	b.WriteString("### 正确率分析\n")
	fmt.Fprintf(&b, "- 总体正确率：%.0f%%\n", grading.Percentage)
	fmt.Fprintf(&b, "- 答对题数：%d\n", grading.CorrectCount())
	fmt.Fprintf(&b, "- 总题数：%d\n\n", len(grading.QuestionDetails))

	b.WriteString("### 时间分析\n")
	fmt.Fprintf(&b, "- 总答题时间：%d秒\n", submission.BehaviorData.TotalDuration/1000)
	fmt.Fprintf(&b, "- 平均答题时间：%d秒/题\n", avgSeconds)
	fmt.Fprintf(&b, "- 完成率：%d%%\n\n", completionPct)

	b.WriteString("### 行为分析\n")
	fmt.Fprintf(&b, "- 答案修改次数：%d\n", totalModifications)
	fmt.Fprintf(&b, "- 答题顺序：%s\n\n", orderKind)

	b.WriteString("请按照以下结构生成评估报告：\n\n")
	fmt.Fprintf(&b, "# %s学习者评估报告\n\n", subject)

	b.WriteString("## 📊 总体表现概览\n{基于总体正确率和时间的简要总结}\n\n")
	b.WriteString("### 🎯 核心指标\n")
	fmt.Fprintf(&b, "- 总体正确率: %.0f%%\n", grading.Percentage)
	fmt.Fprintf(&b, "- 平均答题时间: %d秒\n", avgSeconds)
	fmt.Fprintf(&b, "- 完成度: %d%%\n", completionPct)
	fmt.Fprintf(&b, "- 整体评级: %s\n\n", grading.GradeLevel)

	b.WriteString(`## 🧠 认知能力评估
{基于答题表现评估认知水平}

### 认知特征
- 认知水平：{初级/中级/高级}
- 思维特点：{分析思维能力的特点}
- 认知优势：{表现突出的认知能力}
- 待提升领域：{需要改进的认知方面}

## 📚 知识掌握分析
{基于各知识点表现分析知识结构}

### 知识结构
- 知识水平：{基础/中等/深入}
- 已掌握知识点：{列出表现良好的知识点}
- 薄弱知识点：{列出需要加强的知识点}
- 知识缺口：{主要的知识空白领域}

## 🎨 学习风格推断
{基于答题行为推断学习偏好}

### 学习特征
- 主导学习风格：{视觉型/文本型/应用型/社交型}
- 信息处理偏好：{如何接收和处理信息}
- 学习节奏：{快速/稳定/深入思考型}

## 🔥 学习动机分析
{基于行为模式分析学习动机}

### 动机特征
- 主导动机类型：{任务导向/兴趣驱动/成就导向/应用导向}
- 激励因素：{最能激发学习的因素}
- 学习投入度：{对学习的专注程度}

## 🔍 错误模式分析
{分析错误答案的规律}

### 错误特点
- 主要错误类型：{系统性错误/概念混淆/计算错误/粗心错误}
- 概念混淆：{存在理解混淆的概念}
- 改进方向：{针对错误模式的改进建议}

## 💡 学习建议
{基于评估结果的个性化建议}

### 短期目标
{3-5个具体的短期学习目标}

### 学习策略
{针对学习风格和认知特点的学习方法建议}

### 资源推荐
{适合的学习资源和工具}

请确保分析有数据支撑，避免空泛描述。`)

	return b.String()
}

func buildAssessmentContent(metadata model.QuizMetadata, grading *model.GradingResult, submission model.QuizSubmission) string {
	params := metadata.Parameters
	orDefault := func(v string) string {
		if v == "" {
			return "未知"
		}
		return v
	}

	var b strings.Builder
	b.WriteString("请基于以下答题数据生成学习者评估报告：\n\n")

	b.WriteString("## 基本信息\n")
	fmt.Fprintf(&b, "- 学科：%s\n", orDefault(params.Subject))
	fmt.Fprintf(&b, "- 年级：%s\n", orDefault(params.GradeLevel))
	fmt.Fprintf(&b, "- 自评水平：%s\n", orDefault(params.SelfAssessedLevel))
	fmt.Fprintf(&b, "- 学习目标：%s\n\n", orDefault(params.LearningGoal))

	b.WriteString("## 答题成绩\n")
	fmt.Fprintf(&b, "- 总分：%.0f/%.0f\n", grading.TotalScore, grading.MaxScore)
	fmt.Fprintf(&b, "- 正确率：%.0f%%\n", grading.Percentage)
	fmt.Fprintf(&b, "- 等级评定：%s\n\n", grading.GradeLevel)

	b.WriteString("## 题目详情\n")
	if len(grading.QuestionDetails) == 0 {
		b.WriteString("无详细题目数据\n")
	}
	for i, q := range grading.QuestionDetails {
		mark := "✗错误"
		if q.IsCorrect {
			mark = "✓正确"
		}
		elapsed := "未知"
		if ms, ok := submission.TimingData[q.QuestionID]; ok {
			elapsed = fmt.Sprintf("%d秒", ms/1000)
		}
		points := strings.Join(q.KnowledgePoints, ", ")
		if points == "" {
			points = "无"
		}
		fmt.Fprintf(&b, "题目%d：%s | 学生答案：%s | 正确答案：%s | 用时：%s | 知识点：%s\n",
			i+1, mark, q.StudentAnswer, q.CorrectAnswer, elapsed, points)
	}

	b.WriteString("\n## 行为数据\n")
	fmt.Fprintf(&b, "- 总答题时长：%d秒\n", submission.BehaviorData.TotalDuration/1000)
	fmt.Fprintf(&b, "- 答案修改情况：%v\n", submission.ModificationData)
	fmt.Fprintf(&b, "- 答题顺序：%v\n\n", submission.BehaviorData.QuestionOrder)

	joinOrDefault := func(items []string) string {
		if len(items) == 0 {
			return "待分析"
		}
		return strings.Join(items, "; ")
	}
	b.WriteString("## 反馈总结\n")
	fmt.Fprintf(&b, "优势：%s\n", joinOrDefault(grading.OverallFeedback.Strengths))
	fmt.Fprintf(&b, "不足：%s\n\n", joinOrDefault(grading.OverallFeedback.Weaknesses))

	b.WriteString("请生成详细的个性化评估报告，为后续学习内容生成提供依据。")
	return b.String()
}
