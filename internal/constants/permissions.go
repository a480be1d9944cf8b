package constants

const (
	ViewData           = "view_data"
	ManageMinisters    = "manage_ministers"
	ReviewApplications = "review_applications"
	ManageIntake       = "manage_intake"
	ReviewIntake       = "review_intake"
	SendMessages       = "send_messages"
	ManageAllowlist    = "manage_allowlist"
	ManageUsers        = "manage_users"
	AssignRole         = "assign_role"
	RemoveUser         = "remove_user"
)
