// Package policy decides whether an identity operation is permitted for a
// given caller. Every service method calls Authorize before touching the
// store, so a denied caller never learns anything about the target record.
package policy

import "github.com/identitydesk/identity-api/internal/core/domain"

// Operation is the closed set of identity operations subject to policy.
type Operation int

const (
	OpCreate Operation = iota
	OpReadOne
	OpReadMany
	OpSearch
	OpUpdateProfile
	OpUpdateCredential
	OpUpdateRole
	OpDelete
	OpUpdateOwnProfile
	OpUpdateOwnCredential
)

var operationNames = map[Operation]string{
	OpCreate:              "create",
	OpReadOne:             "read_one",
	OpReadMany:            "read_many",
	OpSearch:              "search",
	OpUpdateProfile:       "update_profile",
	OpUpdateCredential:    "update_credential",
	OpUpdateRole:          "update_role",
	OpDelete:              "delete",
	OpUpdateOwnProfile:    "update_own_profile",
	OpUpdateOwnCredential: "update_own_credential",
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return "unknown"
}

// SelfScoped reports whether op targets the caller's own record. Self-scoped
// operations need no role check: identity is established by the caller
// context itself.
func (op Operation) SelfScoped() bool {
	return op == OpUpdateOwnProfile || op == OpUpdateOwnCredential
}

// Caller is the verified identity making a request, derived from the
// authentication token before the core is invoked.
type Caller struct {
	ID   string
	Role string
}

// ReasonInsufficientPermission is the single deny reason the engine emits.
const ReasonInsufficientPermission = "insufficient permission"

// Decision is a tagged allow/deny result. Denials carry a fixed reason and
// are surfaced as errors only at the boundary.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize applies the access rules: self-scoped operations are always
// allowed for an authenticated caller; everything else requires the admin
// role.
func Authorize(caller Caller, op Operation) Decision {
	if op.SelfScoped() {
		return Decision{Allowed: true}
	}
	if caller.Role == domain.RoleAdmin {
		return Decision{Allowed: true}
	}
	return Decision{Reason: ReasonInsufficientPermission}
}
