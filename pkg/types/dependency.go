package types

// DependencyKind is one of the typed sub-resource families owned by a
// target. Each kind is independently listable and relocatable.
type DependencyKind string

const (
	KindAuditTrail         DependencyKind = "audit-trail"
	KindSecurityAssessment DependencyKind = "security-assessment"
	KindSecurityPolicy     DependencyKind = "security-policy"
)

// DependencyKinds lists every kind in the order the move operation
// processes them. The order is stable so dry-run and apply logs line up.
var DependencyKinds = []DependencyKind{
	KindAuditTrail,
	KindSecurityAssessment,
	KindSecurityPolicy,
}

// DependencyResource is a sub-resource owned by exactly one target.
// Instances are enumerated fresh per target at move time, never cached.
type DependencyResource struct {
	Kind          DependencyKind
	ID            string
	DisplayName   string
	TargetID      string
	CompartmentID string
}
