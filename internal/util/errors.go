package util

import "errors"

var (
	// 提交校验（致命，400）
	ErrMissingAnswerKey = errors.New("缺少标准答案，无法批改")
	ErrMissingQuestions = errors.New("缺少题目数据")

	// 会话状态
	ErrSessionNotFound      = errors.New("答题会话不存在或已过期")
	ErrUnknownQuestion      = errors.New("题目不属于该答题会话")
	ErrSessionSubmitted     = errors.New("该会话已提交，不可重复提交")
	ErrSubmissionInProgress = errors.New("提交正在处理中，请勿重复提交")

	// 批改阶段（对提交致命）
	ErrGradingTimeout           = errors.New("AI批改服务响应超时，请稍后重试")
	ErrGradingService           = errors.New("AI批改服务暂时不可用")
	ErrGradingResponseMalformed = errors.New("AI批改结果格式无效")

	// 评估阶段（非致命，降级为无报告）
	ErrAssessmentTimeout = errors.New("AI评估服务响应超时")
	ErrAssessmentService = errors.New("AI评估服务暂时不可用")

	ErrProfileParamsNotFound = errors.New("学习者画像参数不存在或已被消费")
)
