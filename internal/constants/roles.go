package constants

const (
	Superadmin = "superadmin"
	Admin      = "admin"
	Reviewer   = "reviewer"
	Finance    = "finance"
	Viewer     = "viewer"
	Applicant  = "applicant"
)

// ValidRoles is the set of allowed DB enum values for user role.
var ValidRoles = []string{Applicant, Viewer, Finance, Reviewer, Admin, Superadmin}

// IsValidRole returns true if role is one of the allowed enum values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
