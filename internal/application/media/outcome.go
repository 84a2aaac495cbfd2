// Package media 实现书籍插图与朗读音频的生成流程
package media

import "fmt"

// Outcome 单页生成结果
type Outcome int

const (
	OutcomeGenerated Outcome = iota + 1
	OutcomeFailed
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGenerated:
		return "generated"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText 以小写名称序列化
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// BatchOutcome 一次批量运行的汇总
// Total 只统计实际尝试生成的页面；预先已有插图的页面只计入 Skipped
type BatchOutcome struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	// Interrupted 调用方在页面之间取消了本次运行
	Interrupted bool `json:"interrupted,omitempty"`
}

// Record 计入一页的结果
func (b *BatchOutcome) Record(o Outcome) {
	switch o {
	case OutcomeGenerated:
		b.Generated++
	case OutcomeFailed:
		b.Failed++
	case OutcomeSkipped:
		b.Skipped++
	}
}

// Summary 面向用户的统计文案
func (b BatchOutcome) Summary() string {
	return fmt.Sprintf("%d generated, %d failed, %d skipped of %d", b.Generated, b.Failed, b.Skipped, b.Total)
}
