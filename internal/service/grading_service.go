package service

import (
	"context"
	"eduspark_backend/internal/config"
	"eduspark_backend/internal/model"
	"eduspark_backend/internal/util"
	"eduspark_backend/pkg/logger"
	"eduspark_backend/pkg/monitoring"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// completionClient 两个流水线阶段共用的补全调用面
type completionClient interface {
	Complete(ctx context.Context, timeout time.Duration, systemPrompt, userContent string) (string, error)
}

const gradingSystemPrompt = `您是"EduGrader"专业试题批改系统。

批改要求：
1. 根据标准答案批改学生答案
2. 计算准确得分
3. 为每题提供详细反馈
4. 给出鼓励性评价

批改标准：
- 选择题：完全正确得满分，错误得0分
- 填空题：允许合理表达，酌情给分
- 计算题：过程对结果错可部分给分

输出格式：严格JSON格式`

type GradingService struct {
	ai  completionClient
	mu  sync.RWMutex
	cfg config.AIConfig
}

func NewGradingService(ai completionClient, cfg config.AIConfig) *GradingService {
	return &GradingService{ai: ai, cfg: cfg}
}

// UpdateConfig 配置热更新时替换批改阶段配置
func (s *GradingService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *GradingService) timeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.GradingTimeout
}

type gradingEnvelope struct {
	GradingResults *model.GradingResult `json:"grading_results"`
}

// Grade 调用批改服务并严格解码结果。超时、服务错误、格式错误均对提交致命，
// 不合成兜底分数，也不自动重试。
func (s *GradingService) Grade(ctx context.Context, metadata model.QuizMetadata, submission model.QuizSubmission, answersContent string) (*model.GradingResult, error) {
	content := buildGradingContent(metadata, submission, answersContent)
	timeout := s.timeout()

	start := time.Now()
	raw, err := s.ai.Complete(ctx, timeout, gradingSystemPrompt, content)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// 学习者中途离开，调用在传输层被中止
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			monitoring.ObserveStage("grading", "timeout", elapsed)
			logger.Log.Error("批改服务超时", zap.Duration("timeout", timeout))
			return nil, util.ErrGradingTimeout
		}
		monitoring.ObserveStage("grading", "error", elapsed)
		logger.Log.Error("批改服务调用失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", util.ErrGradingService, err)
	}

	var envelope gradingEnvelope
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &envelope); err != nil || envelope.GradingResults == nil {
		monitoring.ObserveStage("grading", "malformed", elapsed)
		logger.Log.Error("批改结果解码失败", zap.Error(err), zap.Int("raw_len", len(raw)))
		return nil, util.ErrGradingResponseMalformed
	}

	monitoring.ObserveStage("grading", "ok", elapsed)
	return envelope.GradingResults, nil
}

func buildGradingContent(metadata model.QuizMetadata, submission model.QuizSubmission, answersContent string) string {
	var b strings.Builder
	b.WriteString("批改试题：\n\n")
	fmt.Fprintf(&b, "学科：%s\n", metadata.Parameters.Subject)
	fmt.Fprintf(&b, "年级：%s\n\n", metadata.Parameters.GradeLevel)

	b.WriteString("学生答案：\n")
	qids := make([]string, 0, len(submission.Answers))
	for qid := range submission.Answers {
		qids = append(qids, qid)
	}
	sort.Strings(qids)
	for _, qid := range qids {
		answer := submission.Answers[qid]
		if answer == "" {
			answer = "未作答"
		}
		fmt.Fprintf(&b, "%s：%s（用时%d秒，修改%d次）\n",
			qid, answer, submission.TimingData[qid]/1000, submission.ModificationData[qid])
	}

	b.WriteString("\n标准答案：\n")
	b.WriteString(answersContent)

	b.WriteString(`

返回JSON格式：
{
  "grading_results": {
    "total_score": 总分数值,
    "max_score": 满分数值,
    "percentage": 百分比数值,
    "grade_level": "优秀/良好/及格/需要加强",
    "question_details": [
      {
        "question_id": "题目ID",
        "student_answer": "学生答案",
        "correct_answer": "正确答案",
        "is_correct": true/false,
        "score": 得分数值,
        "max_score": 满分数值,
        "explanation": "解析反馈",
        "knowledge_points": ["知识点"]
      }
    ],
    "overall_feedback": {
      "strengths": ["优势"],
      "weaknesses": ["不足"],
      "suggestions": ["建议"],
      "encouragement": "鼓励话语"
    }
  }
}`)
	return b.String()
}

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripCodeFence 补全结果可能包在Markdown代码块里，取第一个代码块内容
func stripCodeFence(raw string) string {
	if m := codeFenceRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return strings.TrimSpace(raw)
}

// GenerateEncouragement 按正确率分档生成鼓励信息
func GenerateEncouragement(percentage float64) model.Encouragement {
	switch {
	case percentage >= 90:
		return model.Encouragement{
			Emoji:   "🎉",
			Title:   "优秀表现！",
			Message: "恭喜你！你的表现非常出色，已经很好地掌握了这部分知识。继续保持这种学习热情和严谨的态度！",
			Color:   "text-green-600",
			BgColor: "bg-green-50",
		}
	case percentage >= 75:
		return model.Encouragement{
			Emoji:   "👏",
			Title:   "良好表现！",
			Message: "做得很好！你已经掌握了大部分知识点，只需要在个别地方多加练习。相信你很快就能达到优秀水平！",
			Color:   "text-blue-600",
			BgColor: "bg-blue-50",
		}
	case percentage >= 60:
		return model.Encouragement{
			Emoji:   "💪",
			Title:   "继续努力！",
			Message: "你已经有了不错的基础，但还有提升的空间。坚持下去，相信你一定能够突破自己！",
			Color:   "text-yellow-600",
			BgColor: "bg-yellow-50",
		}
	default:
		return model.Encouragement{
			Emoji:   "🌱",
			Title:   "学习起步！",
			Message: "学习是一个循序渐进的过程。建议从基础知识开始，一步一个脚印，相信努力一定会有回报！",
			Color:   "text-orange-600",
			BgColor: "bg-orange-50",
		}
	}
}
