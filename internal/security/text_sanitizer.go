// Package security はユーザー入力の無害化を提供する。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキストとして保存する入力からHTMLを取り除く。
type TextSanitizer interface {
	// Sanitize は全てのタグを除去し、テキスト部分のみを返す。
	// script, styleなどの要素は中身ごと除去される。
	Sanitize(s string) string
}

// StrictTextSanitizer はbluemondayのStrictPolicyによるTextSanitizerの実装。
// ポリシーはスレッドセーフに共有できる。
type StrictTextSanitizer struct {
	policy *bluemonday.Policy
}

var _ TextSanitizer = (*StrictTextSanitizer)(nil)

// NewTextSanitizer はStrictTextSanitizerを生成する。
func NewTextSanitizer() *StrictTextSanitizer {
	return &StrictTextSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はタグを除去する。
// StrictPolicyはテキストをエスケープして返すため、保存前に元の文字へ戻す。
func (s *StrictTextSanitizer) Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return html.UnescapeString(s.policy.Sanitize(text))
}
