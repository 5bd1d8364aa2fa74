// Package guardrails validates generated financial recommendations
// before they reach the user. All checks are rule-based and operate on
// the response text alone, so validation never needs a network call.
package guardrails

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bobmcallan/finquery/internal/models"
)

// RequiredDisclaimer must appear (case-insensitive) in every response.
const RequiredDisclaimer = "not financial advice"

// Phrases that indicate overconfidence or unsupported certainty.
var overconfidentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\byou must\b`),
	regexp.MustCompile(`\byou should definitely\b`),
	regexp.MustCompile(`\bguaranteed\b`),
	regexp.MustCompile(`\bcertain to\b`),
	regexp.MustCompile(`\bwill definitely\b`),
	regexp.MustCompile(`\balways buy\b`),
	regexp.MustCompile(`\bnever sell\b`),
	regexp.MustCompile(`\bperfect\b`),
	regexp.MustCompile(`\badvisable to\b`),
	regexp.MustCompile(`\byou need to\b`),
}

var (
	confidenceLabelPattern = regexp.MustCompile(`(?i)(confidence|score):\s*[\d.]+`)
	confidenceRatioPattern = regexp.MustCompile(`[\d.]+\s*/\s*1\.0`)
	percentPattern         = regexp.MustCompile(`\d+%`)

	numberPattern = regexp.MustCompile(`\b\d+\.?\d*%?\b`)
)

// Vocabulary that indicates the response actually reasons over the data.
var reasoningIndicators = []string{
	"rsi", "volatility", "momentum", "moving average",
	"price", "analysis", "indicator", "signal",
	"technical", "reason", "because",
}

// Predictive language that cannot be supported by historical data.
var predictivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)will rise`),
	regexp.MustCompile(`(?i)will fall`),
	regexp.MustCompile(`(?i)tomorrow`),
	regexp.MustCompile(`(?i)next week`),
	regexp.MustCompile(`(?i)guaranteed`),
}

// Validator runs the rule-based check suite over recommendation text.
type Validator struct{}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// CheckOverconfidence flags absolute or overconfident language.
func (v *Validator) CheckOverconfidence(text string) models.CheckResult {
	lower := strings.ToLower(text)
	var flagged []string
	for _, p := range overconfidentPatterns {
		if p.MatchString(lower) {
			flagged = append(flagged, strings.Trim(p.String(), `\b`))
		}
	}
	if len(flagged) == 0 {
		return models.CheckResult{Passed: true, Reason: "No overconfident language detected"}
	}
	if len(flagged) > 3 {
		flagged = flagged[:3]
	}
	return models.CheckResult{Passed: false, Reason: "Flagged: " + strings.Join(flagged, ", ")}
}

// CheckDisclaimer verifies the response carries the required disclaimer.
func (v *Validator) CheckDisclaimer(text string) models.CheckResult {
	if strings.Contains(strings.ToLower(text), RequiredDisclaimer) {
		return models.CheckResult{Passed: true, Reason: "Disclaimer found"}
	}
	return models.CheckResult{Passed: false, Reason: "Missing financial advice disclaimer"}
}

// CheckConfidenceScore verifies the response states an explicit
// confidence score in one of the accepted formats.
func (v *Validator) CheckConfidenceScore(text string) models.CheckResult {
	if confidenceLabelPattern.MatchString(text) {
		return models.CheckResult{Passed: true, Reason: "Confidence score found"}
	}
	if confidenceRatioPattern.MatchString(text) {
		return models.CheckResult{Passed: true, Reason: "Confidence score found (X/1.0 format)"}
	}
	if percentPattern.MatchString(text) {
		return models.CheckResult{Passed: true, Reason: "Likely confidence score found"}
	}
	return models.CheckResult{Passed: false, Reason: "No explicit confidence score"}
}

// CheckReasoning verifies the response cites at least two analytical
// terms, indicating the recommendation is justified.
func (v *Validator) CheckReasoning(text string) models.CheckResult {
	lower := strings.ToLower(text)
	var found []string
	for _, ind := range reasoningIndicators {
		if strings.Contains(lower, ind) {
			found = append(found, ind)
		}
	}
	if len(found) >= 2 {
		sample := found
		if len(sample) > 3 {
			sample = sample[:3]
		}
		return models.CheckResult{Passed: true, Reason: "Reasoning indicators found: " + strings.Join(sample, ", ")}
	}
	return models.CheckResult{Passed: false, Reason: "Insufficient reasoning provided"}
}

// CheckHallucination flags numeric claims made without any backing data
// context and predictive statements about future prices.
func (v *Validator) CheckHallucination(text string, dataContext []string) models.CheckResult {
	var suspicious []string

	numbers := numberPattern.FindAllString(text, -1)
	if len(numbers) > 0 && len(dataContext) == 0 {
		suspicious = append(suspicious,
			fmt.Sprintf("Specific numbers cited (%d) but no data context provided", len(numbers)))
	}

	for _, p := range predictivePatterns {
		if p.MatchString(text) {
			suspicious = append(suspicious,
				"Potentially predictive claim: "+strings.TrimPrefix(p.String(), "(?i)"))
		}
	}

	if len(suspicious) == 0 {
		return models.CheckResult{Passed: true, Reason: "No suspicious claims"}
	}
	if len(suspicious) > 2 {
		suspicious = suspicious[:2]
	}
	return models.CheckResult{Passed: false, Reason: "Flagged: " + strings.Join(suspicious, ", ")}
}

// Validate runs all five checks and aggregates them into a verdict.
// dataContext lists the data points the response should be grounded in,
// e.g. "RSI: 72" or "Price: $150.00".
func (v *Validator) Validate(response string, dataContext []string) *models.GuardrailVerdict {
	verdict := &models.GuardrailVerdict{
		Overconfidence:  v.CheckOverconfidence(response),
		Disclaimer:      v.CheckDisclaimer(response),
		ConfidenceScore: v.CheckConfidenceScore(response),
		Reasoning:       v.CheckReasoning(response),
		Hallucination:   v.CheckHallucination(response, dataContext),
	}

	passed := 0
	for _, c := range verdict.Checks() {
		if c.Result.Passed {
			passed++
		}
	}
	verdict.AllPassed = passed == 5
	verdict.Score = float64(passed) / 5.0
	return verdict
}

// SuggestImprovements maps each failing check to a concrete fix.
func (v *Validator) SuggestImprovements(verdict *models.GuardrailVerdict) []string {
	if verdict == nil {
		return nil
	}

	var suggestions []string
	for _, c := range verdict.Checks() {
		if c.Result.Passed {
			continue
		}
		switch c.Name {
		case "overconfidence":
			suggestions = append(suggestions,
				"Use conditional language: 'if X, then consider Y' instead of absolute statements")
		case "disclaimer":
			suggestions = append(suggestions,
				"Add disclaimer: 'This is not financial advice. Consult a licensed advisor before investing.'")
		case "confidence_score":
			suggestions = append(suggestions,
				"Include explicit confidence score (0.0 to 1.0) based on data quality")
		case "reasoning":
			suggestions = append(suggestions,
				"Expand reasoning: cite specific indicators (RSI, volatility, momentum) and their values")
		case "hallucination":
			suggestions = append(suggestions,
				"Only claim what's in the data. Avoid predictive statements. Cite data sources.")
		}
	}
	return suggestions
}
