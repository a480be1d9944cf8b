package users

import (
	"errors"

	"ministry-backend/internal/constants"
	"ministry-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInvalidRole                 = errors.New("Invalid role")
	ErrOnlySuperadminsAssignAdmins = errors.New("Only superadmins can assign admin or superadmin roles")
	ErrTargetUserNotFound          = errors.New("Target user not found")
	ErrCannotModifyOwnRole         = errors.New("Users cannot modify their own role")
	ErrLastSuperadmin              = errors.New("There must be at least one superadmin")
)

// ValidateRoleGrant checks whether an actor may hand out a role at all
// (used at account creation, where there is no target row yet).
func ValidateRoleGrant(actorRole, targetRole string) error {
	if !constants.IsValidRole(targetRole) {
		return ErrInvalidRole
	}
	if (targetRole == constants.Admin || targetRole == constants.Superadmin) &&
		actorRole != constants.Superadmin {
		return ErrOnlySuperadminsAssignAdmins
	}
	return nil
}

// ValidateRoleAssignmentParams for role governance checks.
type ValidateRoleAssignmentParams struct {
	ActorRole    string
	TargetRole   string
	ActorUserID  string
	TargetUserID string
}

// ValidateRoleAssignment enforces role governance: admin/superadmin grants are
// superadmin-only, actors cannot change their own role, and the last
// superadmin cannot be downgraded.
func ValidateRoleAssignment(db *gorm.DB, params ValidateRoleAssignmentParams) error {
	if !constants.IsValidRole(params.TargetRole) {
		return ErrInvalidRole
	}
	if (params.TargetRole == constants.Admin || params.TargetRole == constants.Superadmin) &&
		params.ActorRole != constants.Superadmin {
		return ErrOnlySuperadminsAssignAdmins
	}
	var target models.User
	if err := db.Where("user_id = ?", params.TargetUserID).First(&target).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrTargetUserNotFound
		}
		return err
	}
	if params.ActorUserID == params.TargetUserID && params.ActorRole != constants.Superadmin {
		return ErrCannotModifyOwnRole
	}
	if target.Role == constants.Superadmin && params.TargetRole != constants.Superadmin {
		var count int64
		db.Model(&models.User{}).Where("role = ?", constants.Superadmin).Count(&count)
		if count <= 1 {
			return ErrLastSuperadmin
		}
	}
	return nil
}
