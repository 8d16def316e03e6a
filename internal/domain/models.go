package domain

// BoundingBox locates a token on the source image, in pixel coordinates with
// the origin in the upper-left corner.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RawToken is a candidate amount token produced by the extractor or the OCR
// engine. Consumed once per request, never persisted.
type RawToken struct {
	Value      string       `json:"value"`
	Confidence float64      `json:"confidence"`
	Position   *BoundingBox `json:"position,omitempty"`
	Context    string       `json:"context,omitempty"`
}

// NormalizedAmount is a RawToken that survived correction, numeric extraction
// and range validation.
type NormalizedAmount struct {
	Original           string   `json:"original"`
	Normalized         float64  `json:"normalized"`
	Confidence         float64  `json:"confidence"`
	CorrectionsApplied []string `json:"corrections_applied"`
	Context            string   `json:"context,omitempty"`
}

// AmountDetail is a classified amount as it appears in the final response.
type AmountDetail struct {
	Type       AmountType `json:"type"`
	Value      float64    `json:"value"`
	Source     string     `json:"source"`
	Confidence float64    `json:"confidence"`
}

// GuardrailViolation records a single rule breach.
type GuardrailViolation struct {
	Rule         string                 `json:"rule"`
	Severity     Severity               `json:"severity"`
	Message      string                 `json:"message"`
	Context      map[string]interface{} `json:"context,omitempty"`
	SuggestedFix string                 `json:"suggested_fix,omitempty"`
}

// GuardrailResult is the verdict of one validator or a merge of several.
type GuardrailResult struct {
	Passed            bool                 `json:"passed"`
	RiskLevel         RiskLevel            `json:"risk_level"`
	Violations        []GuardrailViolation `json:"violations"`
	Confidence        float64              `json:"confidence"`
	RecommendedAction RecommendedAction    `json:"recommended_action"`
}

// ProcessingDetails carries per-stage diagnostics into the response.
type ProcessingDetails struct {
	OCRConfidence            *float64 `json:"ocr_confidence"`
	NormalizationConfidence  float64  `json:"normalization_confidence"`
	ClassificationConfidence float64  `json:"classification_confidence"`
	ProcessingTimeMs         int64    `json:"processing_time_ms"`
	TokensExtracted          int      `json:"tokens_extracted"`
	CorrectionsApplied       []string `json:"corrections_applied"`
}

// DocumentResponse is the result of one processing run, shared by the text
// and image entry points.
type DocumentResponse struct {
	Currency          Currency          `json:"currency"`
	Amounts           []AmountDetail    `json:"amounts"`
	Status            DocumentStatus    `json:"status"`
	ProcessingDetails ProcessingDetails `json:"processing_details"`
	RequestID         string            `json:"request_id"`
	GuardrailsResult  *GuardrailResult  `json:"guardrails_result,omitempty"`
	Warnings          []string          `json:"warnings,omitempty"`
}

// ProcessingOptions are per-request overrides supplied by the caller.
// Zero values mean "use configured defaults".
type ProcessingOptions struct {
	EnableAI            *bool   `json:"enable_ai,omitempty"`
	MinOCRConfidence    float64 `json:"min_ocr_confidence,omitempty"`
	CurrencyHint        string  `json:"currency_hint,omitempty"`
	ConfidenceThreshold float64 `json:"confidence_threshold,omitempty"`
}

// OCRWord is one recognised word with its confidence and location.
type OCRWord struct {
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

// OCRResult is what an OCR engine returns for one image.
type OCRResult struct {
	FullText          string    `json:"full_text"`
	OverallConfidence float64   `json:"overall_confidence"`
	Words             []OCRWord `json:"words"`
}
