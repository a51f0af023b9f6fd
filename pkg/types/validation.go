package types

// Violation severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// RuleViolation is one failed rule with its severity and diagnostic
// message.
type RuleViolation struct {
	// Rule is the stable rule name.
	Rule string `json:"rule"`

	// Severity is SeverityError or SeverityWarning.
	Severity string `json:"severity"`

	// Message describes the violation, naming the records involved.
	Message string `json:"message"`
}

// ValidationResult aggregates every violation from a validation pass,
// partitioned into blocking errors and non-blocking warnings.
type ValidationResult struct {
	Errors   []RuleViolation `json:"errors,omitempty"`
	Warnings []RuleViolation `json:"warnings,omitempty"`

	// Applied names every rule that ran, pass or fail, in rule order.
	Applied []string `json:"applied,omitempty"`
}

// IsValid reports whether no error-severity violation exists. Warnings
// never block a write.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Add appends a violation to the matching partition.
func (r *ValidationResult) Add(v RuleViolation) {
	if v.Severity == SeverityWarning {
		r.Warnings = append(r.Warnings, v)
		return
	}
	r.Errors = append(r.Errors, v)
}

// RuleContext is the full input to a validation pass. Rules are pure
// functions of this context: no hidden state, no I/O.
type RuleContext struct {
	// Candidate is the ownership being created or updated. Nil for
	// deletion-only validation.
	Candidate *Ownership

	// Entities is the full entity set, id → record.
	Entities map[string]*Entity

	// Ownerships is the full edge set, id → record. For updates it still
	// contains the pre-update record under the candidate's id; rules must
	// exclude it when walking edges.
	Ownerships map[string]*Ownership

	// ShareClasses is the full share class set, id → record.
	ShareClasses map[string]*ShareClass
}
