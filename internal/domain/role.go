package domain

// CallerRole selects which reservation statuses block availability.
// The caller resolves it from its own auth layer; the engine treats it
// as an opaque flag.
type CallerRole string

const (
	RoleDefault    CallerRole = "default"
	RoleTechnician CallerRole = "technician"
)

// ParseCallerRole maps an external role string onto a known role,
// falling back to the conservative default for anything unknown.
func ParseCallerRole(s string) CallerRole {
	if CallerRole(s) == RoleTechnician {
		return RoleTechnician
	}
	return RoleDefault
}
