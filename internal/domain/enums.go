package domain

// AmountType is the closed set of semantic categories an amount can take.
type AmountType string

const (
	AmountTypeTotalBill         AmountType = "total_bill"
	AmountTypePaid              AmountType = "paid"
	AmountTypeDue               AmountType = "due"
	AmountTypeInsuranceCoverage AmountType = "insurance_coverage"
	AmountTypeCopay             AmountType = "copay"
	AmountTypeDeductible        AmountType = "deductible"
	AmountTypeDiscount          AmountType = "discount"
	AmountTypeTax               AmountType = "tax"
	AmountTypeOther             AmountType = "other"
)

// ValidAmountTypes maps every recognised category to true.
var ValidAmountTypes = map[AmountType]bool{
	AmountTypeTotalBill:         true,
	AmountTypePaid:              true,
	AmountTypeDue:               true,
	AmountTypeInsuranceCoverage: true,
	AmountTypeCopay:             true,
	AmountTypeDeductible:        true,
	AmountTypeDiscount:          true,
	AmountTypeTax:               true,
	AmountTypeOther:             true,
}

// RiskLevel orders guardrail verdicts from benign to blocking.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// riskRank gives the merge ordering LOW < MEDIUM < HIGH < CRITICAL.
var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// MaxRisk returns the higher of two risk levels under the merge ordering.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if riskRank[b] > riskRank[a] {
		return b
	}
	return a
}

// Severity classifies a single guardrail violation.
type Severity string

const (
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// RecommendedAction is the disposition a merged guardrail result suggests.
type RecommendedAction string

const (
	ActionProceed            RecommendedAction = "PROCEED"
	ActionProceedWithCaution RecommendedAction = "PROCEED_WITH_CAUTION"
	ActionManualReview       RecommendedAction = "MANUAL_REVIEW"
	ActionReject             RecommendedAction = "REJECT"
)

// DocumentStatus is the terminal status of a processing run.
type DocumentStatus string

const (
	StatusOK             DocumentStatus = "ok"
	StatusPartial        DocumentStatus = "partial"
	StatusError          DocumentStatus = "error"
	StatusNoAmountsFound DocumentStatus = "no_amounts_found"
)

// PipelineState tracks where a request is in the processing state machine.
type PipelineState string

const (
	StateReceived        PipelineState = "RECEIVED"
	StateInputValidated  PipelineState = "INPUT_VALIDATED"
	StateOCRDone         PipelineState = "OCR_DONE"
	StateTokensExtracted PipelineState = "TOKENS_EXTRACTED"
	StateNormalized      PipelineState = "NORMALIZED"
	StateClassified      PipelineState = "CLASSIFIED"
	StateAISafetyChecked PipelineState = "AI_SAFETY_CHECKED"
	StateOutputValidated PipelineState = "OUTPUT_VALIDATED"
	StateResponded       PipelineState = "RESPONDED"
)

// Currency codes the detector can emit.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyINR Currency = "INR"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
)

// SupportedCurrencies maps every currency the detector can emit to true.
var SupportedCurrencies = map[Currency]bool{
	CurrencyUSD: true,
	CurrencyINR: true,
	CurrencyEUR: true,
	CurrencyGBP: true,
	CurrencyCAD: true,
}

// FileType represents the allowed file types for image upload.
type FileType string

const (
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}
