package auth

// Role is the closed set of roles the system knows about. Access checks
// go through the capability methods below; handlers and services never
// compare raw role strings.
type Role string

const (
	RoleEmployee   Role = "Employee"
	RoleManager    Role = "Manager"
	RoleSuperAdmin Role = "Super Admin"
)

// ParseRole maps a stored label onto the closed set; anything
// unrecognized degrades to Employee, the least-privileged role.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleManager:
		return RoleManager
	case RoleSuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleEmployee
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleSuperAdmin:
		return true
	}
	return false
}

// CanEndorse reports whether the role may apply first-stage actions
// (endorse, reject, return) to a pending request.
func (r Role) CanEndorse() bool {
	return r == RoleManager || r == RoleSuperAdmin
}

// CanFinalize reports whether the role may apply top-management actions
// to an endorsed request, including the balance-affecting approval.
func (r Role) CanFinalize() bool {
	return r == RoleSuperAdmin
}

// CanListSubordinates reports whether the role may list other users at
// all; the department scoping itself lives in the user service.
func (r Role) CanListSubordinates() bool {
	return r == RoleManager || r == RoleSuperAdmin
}

// CanManageBalances guards the administrative ledger override.
func (r Role) CanManageBalances() bool {
	return r == RoleSuperAdmin
}
