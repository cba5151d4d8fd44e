package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Role selects which side of the conversation is being assessed. Output
// checks see the user question as context so the classifier can judge the
// answer in situ.
type Role string

const (
	RoleInput  Role = "User"
	RoleOutput Role = "Agent"
)

// DefaultTimeout bounds a single classification call.
const DefaultTimeout = 10 * time.Second

// Classifier runs the moderation model over a fully-framed prompt and
// returns its raw text verdict.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// Verdict is the outcome of one moderation check.
type Verdict struct {
	IsSafe            bool
	BlockedCategories []string // taxonomy codes, e.g. "S1"
	BlockedNames      []string // display names for the codes
	Risk              Risk
	Latency           time.Duration
}

// Config configures a Guard.
type Config struct {
	Classifier Classifier
	Logger     *slog.Logger
	Enabled    bool
	Timeout    time.Duration

	// AllowedCategories is accepted for configuration compatibility but is
	// not consulted: every flagged category counts toward the verdict.
	AllowedCategories []string
}

// Guard classifies text against the safety taxonomy. It fails open: when
// the classifier is disabled or errors, the verdict is safe with
// RiskUnknown so a moderation outage never takes the service down.
type Guard struct {
	classifier Classifier
	logger     *slog.Logger
	enabled    bool
	timeout    time.Duration
}

// New builds a Guard from cfg.
func New(cfg Config) *Guard {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guard{
		classifier: cfg.Classifier,
		logger:     logger,
		enabled:    cfg.Enabled && cfg.Classifier != nil,
		timeout:    timeout,
	}
}

// Enabled reports whether checks will actually reach the classifier.
func (g *Guard) Enabled() bool { return g.enabled }

// Check classifies text for the given role. For RoleOutput, question
// supplies the user turn the text responds to; for RoleInput it is ignored.
func (g *Guard) Check(ctx context.Context, role Role, text, question string) Verdict {
	if !g.enabled {
		return Verdict{IsSafe: true, Risk: RiskNone}
	}

	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.classifier.Classify(checkCtx, buildPrompt(role, text, question))
	latency := time.Since(start)
	if err != nil {
		g.logger.Warn("moderation check failed, allowing content",
			"role", string(role),
			"error", err,
			"latency", latency)
		return Verdict{IsSafe: true, Risk: RiskUnknown, Latency: latency}
	}

	verdict := parseVerdict(raw)
	verdict.Latency = latency
	if !verdict.IsSafe {
		g.logger.Warn("moderation flagged content",
			"role", string(role),
			"categories", verdict.BlockedCategories,
			"risk", string(verdict.Risk),
			"latency", latency)
	}
	return verdict
}

// parseVerdict interprets the classifier's response: a first line of "safe"
// or "unsafe", and for unsafe a second line of comma-separated category
// codes. Unparseable responses count as safe (fail open).
func parseVerdict(raw string) Verdict {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	head := strings.ToLower(strings.TrimSpace(lines[0]))

	if head != "unsafe" {
		return Verdict{IsSafe: true, Risk: RiskNone}
	}

	var codes []string
	if len(lines) > 1 {
		codes = parseCategories(lines[1])
	}
	if len(codes) == 0 {
		// Flagged but no recognizable category: treat as a mid-tier hit.
		return Verdict{IsSafe: false, Risk: RiskMedium}
	}

	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = CategoryName(c)
	}
	sort.Strings(names)
	return Verdict{
		IsSafe:            false,
		BlockedCategories: codes,
		BlockedNames:      names,
		Risk:              riskFor(codes),
	}
}

const promptTemplate = `Task: Check if there is unsafe content in '%s' messages in conversations according to our safety policy with the below categories.

<BEGIN UNSAFE CONTENT CATEGORIES>
S1: Violent Crimes.
S2: Non-Violent Crimes.
S3: Sex-Related Crimes.
S4: Child Sexual Exploitation.
S5: Defamation.
S6: Specialized Advice.
S7: Privacy.
S8: Intellectual Property.
S9: Indiscriminate Weapons.
S10: Hate.
S11: Suicide & Self-Harm.
S12: Sexual Content.
S13: Elections.
S14: Code Interpreter Abuse.
<END UNSAFE CONTENT CATEGORIES>

<BEGIN CONVERSATION>

%s

<END CONVERSATION>

Provide your safety assessment for ONLY THE LAST %s message in the above conversation:
- First line must read 'safe' or 'unsafe'.
- If unsafe, a second line must include a comma-separated list of violated categories.`

// buildPrompt frames text for classification. Output checks include the
// originating question so the answer is judged with its context.
func buildPrompt(role Role, text, question string) string {
	var convo string
	if role == RoleOutput && question != "" {
		convo = fmt.Sprintf("User: %s\n\nAgent: %s", question, text)
	} else {
		convo = fmt.Sprintf("%s: %s", role, text)
	}
	return fmt.Sprintf(promptTemplate, role, convo, role)
}
