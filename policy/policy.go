// Package policy provides a simple, optional review layer that can be
// attached to a run via context. It is deliberately decoupled from the rest
// of the engine so that using it is entirely opt-in – runs without a Policy
// in their context keep the default "ask a human" behaviour at every gate.
package policy

import (
	"context"
	"strings"

	"github.com/viant/reviso/service/approval"
)

// Review modes recognised at the approval gate.
const (
	ModeAsk  = "ask"  // suspend and wait for a human verdict (default)
	ModeAuto = "auto" // approve every gate without waiting
	ModeDeny = "deny" // block the run at the gate
)

// DecideFunc is invoked when Mode==ask. Returning (verdict, true) resolves
// the gate in-line; returning false suspends the run for a human.
// Implementations MAY mutate the policy (for example, switching to ModeAuto
// after the first approval).
type DecideFunc func(ctx context.Context, topic, draft string, p *Policy) (approval.Verdict, bool)

// Policy represents the review settings for the current run.
//
//   - Mode controls the high-level behaviour (ask / auto / deny).
//   - AllowList, BlockList filter by topic regardless of Mode.
//   - Decide is only used when Mode==ask.
//
// A nil *Policy means "ask a human at every gate" and is therefore the
// zero-cost default.
type Policy struct {
	Mode      string   // ask / auto / deny (default = ask)
	AllowList []string // whitelist (empty => all)
	BlockList []string // blacklist
	Decide    DecideFunc
}

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:      p.Mode,
		AllowList: append([]string(nil), p.AllowList...),
		BlockList: append([]string(nil), p.BlockList...),
	}
}

// FromConfig converts a stored Config back to a runtime Policy (without
// DecideFunc).
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:      c.Mode,
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// IsAllowed evaluates AllowList / BlockList. Both lists match by exact,
// case-insensitive comparison of the topic. BlockList has priority.
func (p *Policy) IsAllowed(topic string) bool {
	if p == nil {
		return true
	}
	normalized := strings.ToLower(topic)
	for _, b := range p.BlockList {
		if normalized == strings.ToLower(b) {
			return false
		}
	}
	if len(p.AllowList) == 0 {
		return true
	}
	for _, a := range p.AllowList {
		if normalized == strings.ToLower(a) {
			return true
		}
	}
	return false
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy stores the policy in a derived context.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext returns the policy stored in ctx, or nil when absent.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(ctxKey).(*Policy)
	return p
}
