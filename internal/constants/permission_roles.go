package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:           {Viewer, Finance, Reviewer, Admin, Superadmin},
	ManageMinisters:    {Admin, Superadmin},
	ReviewApplications: {Reviewer, Admin, Superadmin},
	ManageIntake:       {Admin, Superadmin},
	ReviewIntake:       {Reviewer, Admin, Superadmin},
	SendMessages:       {Admin, Superadmin},
	ManageAllowlist:    {Finance, Admin, Superadmin},
	ManageUsers:        {Admin, Superadmin},
	AssignRole:         {Admin, Superadmin},
	RemoveUser:         {Superadmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
