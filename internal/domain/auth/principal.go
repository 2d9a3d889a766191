package auth

// Role is carried in the access token's "role" claim.
type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can decide leave requests
	RoleEmployee Role = "employee" // Own attendance and leave only
)

// Principal is the authenticated caller. Tokens are issued by the identity service;
// this service only reads them.
type Principal struct {
	UserID   string
	Role     Role
	Position string
}

func (p Principal) IsManager() bool {
	return p.Role == RoleManager || p.Role == RoleOwner
}
