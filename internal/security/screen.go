// Package security provides deterministic input screening: prompt injection
// detection and PII detection over inbound question text.
//
// Detection is declarative: an ordered table of (pattern, category, tier)
// entries compiled once at package init. No filter is perfect; this catches
// common patterns and is backed by a second, model-based moderation layer.
package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Risk is the ordinal severity of a screening verdict.
type Risk string

// Risk tiers, ordered low < medium < high < critical.
const (
	RiskLow      Risk = "low"
	RiskMedium   Risk = "medium"
	RiskHigh     Risk = "high"
	RiskCritical Risk = "critical"
)

// riskRank orders tiers for max-aggregation.
var riskRank = map[Risk]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Question length bounds, in runes, applied after trimming.
const (
	MinQuestionLen = 1
	MaxQuestionLen = 500
)

// detector is one injection pattern with its category name and risk tier.
type detector struct {
	re       *regexp.Regexp
	category string
	tier     Risk
}

// injectionDetectors is the ordered detection table (ES + EN).
// Patterns match against NFKC-normalized, lowercased text.
var injectionDetectors = []detector{
	// Ignore/override previous instructions
	{regexp.MustCompile(`ignore\s+.*(?:previous|all|your|above|prior|earlier)\s+(?:instructions?|prompts?|rules?)`), "instruction_override", RiskCritical},
	{regexp.MustCompile(`ignora\s+.*(?:todas?|las?|tus?|anteriores?)\s+(?:instrucciones?|normas?|reglas?)`), "instruction_override", RiskCritical},
	{regexp.MustCompile(`(?:disregard|forget|override)\s+.*(?:previous|all|above|prior)\s+(?:instructions?|prompts?|rules?|context)`), "instruction_override", RiskCritical},

	// New instruction injection
	{regexp.MustCompile(`new\s+(?:instructions?|rules?|prompt)\s*[:=]`), "new_instructions", RiskCritical},
	{regexp.MustCompile(`nuevas?\s+(?:instrucciones?|reglas?)\s*[:=]`), "new_instructions", RiskCritical},

	// Role hijacking
	{regexp.MustCompile(`(?:from\s+now\s+on|starting\s+now)\s+(?:you\s+are|act\s+as|pretend|be)`), "role_hijack", RiskCritical},
	{regexp.MustCompile(`(?:desde\s+ahora|a\s+partir\s+de\s+ahora)\s+(?:eres|act[uú]a\s+como|finge|s[eé])`), "role_hijack", RiskCritical},

	// System prompt extraction
	{regexp.MustCompile(`(?:show|reveal|display|print|output|tell|give)\s+(?:me\s+)?(?:your\s+)?(?:system\s+)?(?:prompt|instructions?|rules?)`), "prompt_extraction", RiskHigh},
	{regexp.MustCompile(`(?:muestra|revela|ense[ñn]a|imprime|dame)\s+(?:tu\s+)?(?:prompt|instrucciones?|reglas?)`), "prompt_extraction", RiskHigh},

	// Jailbreak markers
	{regexp.MustCompile(`\bdan\s*mode\b`), "jailbreak", RiskCritical},
	{regexp.MustCompile(`jailbreak`), "jailbreak", RiskCritical},

	// Code execution markers
	{regexp.MustCompile("```(?:python|javascript|bash|shell|exec|eval)"), "code_execution", RiskHigh},
	{regexp.MustCompile(`\beval\s*\(`), "code_execution", RiskHigh},
	{regexp.MustCompile(`\bexec\s*\(`), "code_execution", RiskHigh},

	// SQL injection markers
	{regexp.MustCompile(`;\s*(?:drop|delete|update|insert|alter|truncate)\s+`), "sql_injection", RiskCritical},
	{regexp.MustCompile(`union\s+select`), "sql_injection", RiskCritical},
	{regexp.MustCompile(`'\s*or\s*'1'\s*=\s*'1`), "sql_injection", RiskCritical},

	// Delimiter / markup attacks
	{regexp.MustCompile(`\]\s*\}\s*\{`), "json_injection", RiskMedium},
	{regexp.MustCompile("```\\s*(?:system|assistant|user)"), "markdown_injection", RiskMedium},

	// Invisible characters used for bypass attempts
	{regexp.MustCompile("[​-‏ -‮⁠-⁯]"), "invisible_chars", RiskMedium},
}

// piiDetector is one PII pattern. Matches populate warnings, never issues.
type piiDetector struct {
	kind string
	re   *regexp.Regexp
}

// piiDetectors covers Spanish-focused identifiers plus universal kinds.
var piiDetectors = []piiDetector{
	{"dni", regexp.MustCompile(`(?i)\b\d{8}\s*-?\s*[A-Za-z]\b`)},
	{"nie", regexp.MustCompile(`(?i)\b[XYZxyz]\s*-?\s*\d{7}\s*-?\s*[A-Za-z]\b`)},
	{"phone", regexp.MustCompile(`\b(?:\+34|0034)?\s*[6789]\d{2}\s*\d{3}\s*\d{3}\b`)},
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"iban", regexp.MustCompile(`\b[A-Z]{2}\d{2}\s*\d{4}\s*\d{4}\s*\d{4}\s*\d{4}\s*\d{4}\b`)},
	{"credit_card", regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`)},
}

// Verdict is the result of screening one input text.
type Verdict struct {
	IsSafe   bool     // false iff issues exist (length/format or critical injection)
	Risk     Risk     // highest tier among matched injection detectors
	Patterns []string // matched injection category names, detection order, deduplicated
	PIITypes []string // detected PII kinds
	Issues   []string // blocking problems; never echo the offending text
	Warnings []string // non-blocking notes (PII)
}

// Screen performs deterministic text screening. Stateless and safe for
// concurrent use; the same text always yields the same Verdict.
type Screen struct{}

// NewScreen creates a Screen.
func NewScreen() *Screen {
	return &Screen{}
}

// Check screens text for injection attempts, PII, and length violations.
//
// Injection risk below critical is reported via Risk and Patterns but does
// not make the verdict unsafe; callers apply their own blocking policy.
func (s *Screen) Check(text string) Verdict {
	v := Verdict{Risk: RiskLow}

	// Length bounds apply to the trimmed original text.
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n < MinQuestionLen:
		v.Issues = append(v.Issues, fmt.Sprintf("question too short (minimum %d characters)", MinQuestionLen))
	case n > MaxQuestionLen:
		v.Issues = append(v.Issues, fmt.Sprintf("question too long (maximum %d characters)", MaxQuestionLen))
	}

	// NFKC collapses compatibility forms so homoglyph variants of keywords
	// match the same patterns.
	normalized := norm.NFKC.String(strings.ToLower(text))

	seen := make(map[string]bool)
	for _, d := range injectionDetectors {
		if !d.re.MatchString(normalized) {
			continue
		}
		if !seen[d.category] {
			seen[d.category] = true
			v.Patterns = append(v.Patterns, d.category)
		}
		if riskRank[d.tier] > riskRank[v.Risk] {
			v.Risk = d.tier
		}
	}

	if v.Risk == RiskCritical {
		v.Issues = append(v.Issues, "potential prompt injection detected: "+strings.Join(v.Patterns, ", "))
	}

	// PII never blocks; it is surfaced so the caller can warn.
	for _, p := range piiDetectors {
		if p.re.MatchString(text) {
			v.PIITypes = append(v.PIITypes, p.kind)
		}
	}
	if len(v.PIITypes) > 0 {
		v.Warnings = append(v.Warnings, "PII detected: "+strings.Join(v.PIITypes, ", "))
	}

	v.IsSafe = len(v.Issues) == 0
	return v
}
