package approval

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
	"github.com/harunnryd/fraudgate/internal/foundry"

	"github.com/oklog/ulid/v2"
)

// Mode is the blanket stance of the policy.
type Mode string

const (
	// ModeAlways approves every required tool call (the default).
	ModeAlways Mode = "always"
	// ModeNever denies every required tool call.
	ModeNever Mode = "never"
)

type Verdict string

const (
	VerdictApproved Verdict = "APPROVED"
	VerdictDenied   Verdict = "DENIED"
)

// Decision is one audited policy decision on a required tool call.
type Decision struct {
	ID         string    `json:"id"`
	ToolCallID string    `json:"tool_call_id"`
	Tool       string    `json:"tool"`
	Verdict    Verdict   `json:"verdict"`
	Reason     string    `json:"reason"`
	DecidedAt  time.Time `json:"decided_at"`
}

// Policy decides required tool calls. Deny entries beat auto-allow entries,
// auto-allow entries beat a blanket ModeNever.
type Policy struct {
	mode      Mode
	autoAllow []string
	deny      []string

	mu    sync.Mutex
	trail []Decision
}

func NewPolicy(mode Mode, autoAllow, deny []string) (*Policy, error) {
	switch mode {
	case "", ModeAlways:
		mode = ModeAlways
	case ModeNever:
	default:
		return nil, fraudgateErrors.InvalidInput("approval mode must be always or never, got " + string(mode))
	}
	return &Policy{
		mode:      mode,
		autoAllow: normalizeNames(autoAllow),
		deny:      normalizeNames(deny),
	}, nil
}

// Decide records and returns the verdict for one required tool call.
func (p *Policy) Decide(call foundry.RequiredToolCall) Verdict {
	name := strings.TrimSpace(call.Name)

	verdict := VerdictApproved
	reason := "approval mode always"
	switch {
	case containsName(p.deny, name):
		verdict = VerdictDenied
		reason = "tool is on the deny list"
	case containsName(p.autoAllow, name):
		reason = "tool is on the auto-allow list"
	case p.mode == ModeNever:
		verdict = VerdictDenied
		reason = "approval mode never"
	}

	decision := Decision{
		ID:         ulid.Make().String(),
		ToolCallID: call.ID,
		Tool:       name,
		Verdict:    verdict,
		Reason:     reason,
		DecidedAt:  time.Now(),
	}

	p.mu.Lock()
	p.trail = append(p.trail, decision)
	p.mu.Unlock()

	slog.Info("Tool call decided", "tool", name, "tool_call_id", call.ID, "verdict", verdict, "reason", reason)
	return verdict
}

// Trail returns the audit trail in decision order.
func (p *Policy) Trail() []Decision {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Decision, len(p.trail))
	copy(out, p.trail)
	return out
}

func normalizeNames(names []string) []string {
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

func containsName(names []string, name string) bool {
	for _, candidate := range names {
		if strings.EqualFold(candidate, name) {
			return true
		}
	}
	return false
}
