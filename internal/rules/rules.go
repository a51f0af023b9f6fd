// Package rules implements the business rule engine for ownership writes.
// Every rule is a pure function of the supplied RuleContext; the engine
// runs a fixed, ordered list and aggregates all violations instead of
// stopping at the first.
package rules

import (
	"fmt"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// Stable rule names, in evaluation order. These strings end up in
// AuditEntry.RulesApplied and in ValidationResult violations, so they must
// not change between releases.
const (
	RuleOwnerExists      = "owner_exists"
	RuleOwnedExists      = "owned_exists"
	RuleShareClassValid  = "share_class_valid"
	RulePositiveShares   = "positive_shares"
	RuleNoSelfOwnership  = "no_self_ownership"
	RuleNoCircular       = "no_circular_ownership"
	RuleWithinAuthorized = "within_authorized_shares"
	RuleNotExpired       = "not_expired"
)

// ruleFunc evaluates one rule against the context. A nil return means the
// rule passed.
type ruleFunc func(ctx types.RuleContext) *types.RuleViolation

// ownershipRules is the fixed write-path rule order.
var ownershipRules = []struct {
	name string
	fn   ruleFunc
}{
	{RuleOwnerExists, checkOwnerExists},
	{RuleOwnedExists, checkOwnedExists},
	{RuleShareClassValid, checkShareClassValid},
	{RulePositiveShares, checkPositiveShares},
	{RuleNoSelfOwnership, checkNoSelfOwnership},
	{RuleNoCircular, checkNoCircular},
	{RuleWithinAuthorized, checkWithinAuthorized},
	{RuleNotExpired, checkNotExpired},
}

// Engine validates ownership writes and deletions. It is stateless; the
// zero value is ready to use.
type Engine struct{}

// NewEngine returns a rule engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ValidateAll runs every write-path rule against the context and returns
// the aggregated result. All failing rules are reported, not just the
// first; warnings never block.
func (e *Engine) ValidateAll(ctx types.RuleContext) types.ValidationResult {
	var result types.ValidationResult
	for _, r := range ownershipRules {
		result.Applied = append(result.Applied, r.name)
		if v := r.fn(ctx); v != nil {
			result.Add(*v)
		}
	}
	return result
}

// ValidateRule runs a single named rule. Unknown names fail with an
// error-severity violation so a typoed caller cannot silently pass.
func (e *Engine) ValidateRule(name string, ctx types.RuleContext) types.ValidationResult {
	var result types.ValidationResult
	for _, r := range ownershipRules {
		if r.name != name {
			continue
		}
		result.Applied = append(result.Applied, r.name)
		if v := r.fn(ctx); v != nil {
			result.Add(*v)
		}
		return result
	}
	result.Add(types.RuleViolation{
		Rule:     name,
		Severity: types.SeverityError,
		Message:  fmt.Sprintf("unknown rule %q", name),
	})
	return result
}

// checkOwnerExists requires the edge source to resolve in the entity set.
func checkOwnerExists(ctx types.RuleContext) *types.RuleViolation {
	if _, ok := ctx.Entities[ctx.Candidate.OwnerEntityID]; !ok {
		return &types.RuleViolation{
			Rule:     RuleOwnerExists,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("owner entity %s does not exist", ctx.Candidate.OwnerEntityID),
		}
	}
	return nil
}

// checkOwnedExists requires the edge target to resolve in the entity set.
func checkOwnedExists(ctx types.RuleContext) *types.RuleViolation {
	if _, ok := ctx.Entities[ctx.Candidate.OwnedEntityID]; !ok {
		return &types.RuleViolation{
			Rule:     RuleOwnedExists,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("owned entity %s does not exist", ctx.Candidate.OwnedEntityID),
		}
	}
	return nil
}

// checkShareClassValid requires the share class to resolve and to be
// issued by the owned entity.
func checkShareClassValid(ctx types.RuleContext) *types.RuleViolation {
	sc, ok := ctx.ShareClasses[ctx.Candidate.ShareClassID]
	if !ok {
		return &types.RuleViolation{
			Rule:     RuleShareClassValid,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("share class %s does not exist", ctx.Candidate.ShareClassID),
		}
	}
	if sc.EntityID != ctx.Candidate.OwnedEntityID {
		return &types.RuleViolation{
			Rule:     RuleShareClassValid,
			Severity: types.SeverityError,
			Message: fmt.Sprintf("share class %s belongs to entity %s, not owned entity %s",
				sc.ClassID, sc.EntityID, ctx.Candidate.OwnedEntityID),
		}
	}
	return nil
}

// checkPositiveShares requires a positive share count.
func checkPositiveShares(ctx types.RuleContext) *types.RuleViolation {
	if ctx.Candidate.Shares <= 0 {
		return &types.RuleViolation{
			Rule:     RulePositiveShares,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("shares must be positive, got %d", ctx.Candidate.Shares),
		}
	}
	return nil
}

// checkNoSelfOwnership forbids an entity owning itself directly.
func checkNoSelfOwnership(ctx types.RuleContext) *types.RuleViolation {
	if ctx.Candidate.OwnerEntityID == ctx.Candidate.OwnedEntityID {
		return &types.RuleViolation{
			Rule:     RuleNoSelfOwnership,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("entity %s cannot own itself", ctx.Candidate.OwnerEntityID),
		}
	}
	return nil
}

// checkNoCircular rejects edges that would close a directed cycle.
// Diamonds (two paths converging on the same entity) are permitted; only
// a forward path from owned back to owner is a cycle.
func checkNoCircular(ctx types.RuleContext) *types.RuleViolation {
	if ctx.Candidate.OwnerEntityID == ctx.Candidate.OwnedEntityID {
		// Self-ownership is reported by its own rule.
		return nil
	}
	if WouldCreateCycle(ctx.Candidate, ctx.Ownerships) {
		return &types.RuleViolation{
			Rule:     RuleNoCircular,
			Severity: types.SeverityError,
			Message: fmt.Sprintf("edge %s -> %s would create circular ownership",
				ctx.Candidate.OwnerEntityID, ctx.Candidate.OwnedEntityID),
		}
	}
	return nil
}

// checkWithinAuthorized warns when the write would issue more shares of a
// class than the class authorizes. Non-blocking: cap tables clamp
// available shares at zero instead.
func checkWithinAuthorized(ctx types.RuleContext) *types.RuleViolation {
	sc, ok := ctx.ShareClasses[ctx.Candidate.ShareClassID]
	if !ok {
		// Missing class is already an error from share_class_valid.
		return nil
	}
	issued := ctx.Candidate.Shares
	for id, o := range ctx.Ownerships {
		if id == ctx.Candidate.OwnershipID {
			continue
		}
		if o.ShareClassID == sc.ClassID {
			issued += o.Shares
		}
	}
	if issued > sc.TotalAuthorizedShares {
		return &types.RuleViolation{
			Rule:     RuleWithinAuthorized,
			Severity: types.SeverityWarning,
			Message: fmt.Sprintf("class %s would have %d shares issued against %d authorized",
				sc.ClassID, issued, sc.TotalAuthorizedShares),
		}
	}
	return nil
}

// checkNotExpired warns when the candidate's expiry date has already
// passed. Expired holdings still aggregate into cap tables.
func checkNotExpired(ctx types.RuleContext) *types.RuleViolation {
	exp := ctx.Candidate.ExpiryDate
	if exp == nil || exp.IsZero() {
		return nil
	}
	if exp.Before(ctx.Candidate.EffectiveDate) {
		return &types.RuleViolation{
			Rule:     RuleNotExpired,
			Severity: types.SeverityError,
			Message:  "expiry date precedes effective date",
		}
	}
	if exp.Before(ctx.Candidate.UpdatedAt) {
		return &types.RuleViolation{
			Rule:     RuleNotExpired,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("ownership expired %s", exp.Format("2006-01-02")),
		}
	}
	return nil
}
