package adaptation

// Adjustment is a standardized, deterministic prompt modification keyed by
// a feedback category.
type Adjustment string

const (
	// AdjustClarity asks for plainer wording; triggered by "unclear".
	AdjustClarity Adjustment = "clarity"
	// AdjustGuidance asks for concrete next steps; triggered by
	// "needs guidance".
	AdjustGuidance Adjustment = "guidance"
	// AdjustCaution asks for conservative, verifiable answers; triggered
	// by "inaccurate".
	AdjustCaution Adjustment = "caution"
)

// canonicalOrder fixes the rendering order of adjustment blocks. The order
// in which adjustments were applied to a session never matters.
var canonicalOrder = []Adjustment{AdjustClarity, AdjustGuidance, AdjustCaution}

// adjustmentBlocks are the static text blocks layered onto the base
// template, one per adjustment kind.
var adjustmentBlocks = map[Adjustment]string{
	AdjustClarity: "\n\n【表达优化】\n" +
		"回答时使用通俗易懂的语言，避免不加解释的专业术语；" +
		"结构清晰，先给结论，再给依据；每次回答聚焦一个要点。",
	AdjustGuidance: "\n\n【就医指引】\n" +
		"在回答末尾给出明确的下一步建议：需要就诊时说明科室与紧急程度，" +
		"可以观察时说明观察要点与复诊条件。",
	AdjustCaution: "\n\n【谨慎作答】\n" +
		"对无法确定的医学信息明确说明不确定性，不编造数据或结论；" +
		"涉及用药剂量、检验结果解读时提醒以医生面诊为准。",
}

// Valid reports whether the adjustment is one of the fixed kinds.
func (a Adjustment) Valid() bool {
	_, ok := adjustmentBlocks[a]
	return ok
}

// AdjustmentForFeedback maps a standardized feedback type from the client
// to its adjustment kind. Unmapped types return ("", false).
func AdjustmentForFeedback(feedbackType string) (Adjustment, bool) {
	switch feedbackType {
	case "unclear":
		return AdjustClarity, true
	case "needsguidance":
		return AdjustGuidance, true
	case "inaccurate":
		return AdjustCaution, true
	default:
		return "", false
	}
}
