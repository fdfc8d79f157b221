package service

import "strings"

// ReportHeadings 评估报告的固定小节标题，与评估提示词中的模板一致
var ReportHeadings = []string{
	"## 📊 总体表现概览",
	"## 🧠 认知能力评估",
	"## 📚 知识掌握分析",
	"## 🎨 学习风格推断",
	"## 🔥 学习动机分析",
	"## 🔍 错误模式分析",
	"## 💡 学习建议",
}

// ParseSections 从自由文本报告中按标题锚点提取各小节。
// 生成端的输出格式没有契约保证，因此刻意宽松：标题缺失时该键不出现，
// 首个匹配生效，小节边界不会跨越任何更靠后的标题。永不报错。
func ParseSections(raw string, headings []string) map[string]string {
	sections := make(map[string]string)

	for i, heading := range headings {
		idx := strings.Index(raw, heading)
		if idx < 0 {
			continue
		}

		start := idx + len(heading)
		end := len(raw)
		for _, later := range headings[i+1:] {
			if j := strings.Index(raw[start:], later); j >= 0 && start+j < end {
				end = start + j
			}
		}

		sections[heading] = strings.TrimSpace(raw[start:end])
	}

	return sections
}
