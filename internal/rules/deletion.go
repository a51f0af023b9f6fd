package rules

import (
	"fmt"
	"sort"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// Deletion rule names.
const (
	RuleEntityNotReferenced     = "entity_not_referenced"
	RuleShareClassNotReferenced = "share_class_not_referenced"
)

// EntityBlockers returns the ownership ids that reference the entity as
// owner or owned, sorted for deterministic error messages.
func EntityBlockers(entityID string, ownerships map[string]*types.Ownership) []string {
	var blockers []string
	for id, o := range ownerships {
		if o.References(entityID) {
			blockers = append(blockers, id)
		}
	}
	sort.Strings(blockers)
	return blockers
}

// ShareClassBlockers returns the ownership ids that reference the share
// class, sorted for deterministic error messages.
func ShareClassBlockers(classID string, ownerships map[string]*types.Ownership) []string {
	var blockers []string
	for id, o := range ownerships {
		if o.ShareClassID == classID {
			blockers = append(blockers, id)
		}
	}
	sort.Strings(blockers)
	return blockers
}

// ValidateEntityDeletion runs the referential-integrity subset for
// deleting an entity.
func (e *Engine) ValidateEntityDeletion(entityID string, ctx types.RuleContext) types.ValidationResult {
	result := types.ValidationResult{Applied: []string{RuleEntityNotReferenced}}
	if blockers := EntityBlockers(entityID, ctx.Ownerships); len(blockers) > 0 {
		result.Add(types.RuleViolation{
			Rule:     RuleEntityNotReferenced,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("entity %s is referenced by %d ownership(s)", entityID, len(blockers)),
		})
	}
	return result
}

// ValidateShareClassDeletion runs the referential-integrity subset for
// deleting a share class.
func (e *Engine) ValidateShareClassDeletion(classID string, ctx types.RuleContext) types.ValidationResult {
	result := types.ValidationResult{Applied: []string{RuleShareClassNotReferenced}}
	if blockers := ShareClassBlockers(classID, ctx.Ownerships); len(blockers) > 0 {
		result.Add(types.RuleViolation{
			Rule:     RuleShareClassNotReferenced,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("share class %s is referenced by %d ownership(s)", classID, len(blockers)),
		})
	}
	return result
}
