package users

import (
	"context"
	"errors"
	"strings"

	"ministry-backend/internal/constants"
	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service holds DB for user administration.
type Service struct {
	DB *gorm.DB
}

// CreateUserInput for creating a staff account.
type CreateUserInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// CreateUser creates a staff user. Role defaults to viewer; admin/superadmin
// grants go through role governance at the handler level.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if strings.TrimSpace(in.Fullname) == "" {
		return nil, errors.New("Full name is required")
	}
	trimmed := strings.TrimSpace(in.Fullname)
	if !validation.IsValidFullname(trimmed) {
		return nil, errors.New("Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
	}
	if in.Email == "" || !validation.IsValidEmail(in.Email) {
		return nil, errors.New("Invalid email format")
	}
	if in.Password == "" || !validation.IsValidPassword(in.Password) {
		return nil, errors.New("Invalid password format")
	}
	role := in.Role
	if role == "" {
		role = constants.Viewer
	}
	if !constants.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))

	var existing models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, errors.New("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Fullname:     trimmed,
		Email:        email,
		Phone:        validation.NormalizePhone(in.Phone),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser updates allowed fields: fullname, email, password, phone.
func (s *Service) UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("Missing user ID")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, errors.New("Invalid user ID format (must be a valid UUID)")
	}
	if len(fields) == 0 {
		return nil, errors.New("Missing update fields")
	}

	allowed := map[string]bool{"fullname": true, "email": true, "password": true, "phone": true}
	upd := make(map[string]interface{})
	for k, v := range fields {
		if allowed[k] {
			upd[k] = v
		}
	}
	if len(upd) == 0 {
		return nil, errors.New("No valid update fields provided")
	}

	if e, ok := upd["email"].(string); ok && e != "" {
		if !validation.IsValidEmail(e) {
			return nil, errors.New("Invalid email format")
		}
		upd["email"] = strings.TrimSpace(strings.ToLower(e))
	}
	if p, ok := upd["password"].(string); ok && p != "" {
		if !validation.IsValidPassword(p) {
			return nil, errors.New("Invalid password format")
		}
		hash, _ := bcrypt.GenerateFromPassword([]byte(p), 10)
		upd["password_hash"] = string(hash)
		delete(upd, "password")
	}
	if fn, ok := upd["fullname"].(string); ok {
		trimmed := strings.TrimSpace(fn)
		if trimmed == "" || !validation.IsValidFullname(trimmed) {
			return nil, errors.New("Full name contains invalid characters")
		}
		upd["fullname"] = trimmed
	}
	if ph, ok := upd["phone"].(string); ok && ph != "" {
		if !validation.IsValidPhone(ph) {
			return nil, errors.New("Invalid phone number")
		}
		upd["phone"] = validation.NormalizePhone(ph)
	}

	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("User not found")
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&u).Updates(upd).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ViewUser returns one user by ID.
func (s *Service) ViewUser(ctx context.Context, userID string) (*models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, errors.New("Invalid user ID format (must be a valid UUID)")
	}
	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("User not found")
		}
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users, optionally filtered by role.
func (s *Service) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	q := s.DB.WithContext(ctx)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var users []models.User
	if err := q.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRoleInput for role assignment.
type UpdateRoleInput struct {
	ActorUserID  string
	ActorRole    string
	TargetUserID string
	Role         string
}

// UpdateRole assigns a role after role-governance validation.
func (s *Service) UpdateRole(ctx context.Context, in UpdateRoleInput) (*models.User, error) {
	if err := ValidateRoleAssignment(s.DB.WithContext(ctx), ValidateRoleAssignmentParams{
		ActorRole:    in.ActorRole,
		TargetRole:   in.Role,
		ActorUserID:  in.ActorUserID,
		TargetUserID: in.TargetUserID,
	}); err != nil {
		return nil, err
	}
	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", in.TargetUserID).First(&u).Error; err != nil {
		return nil, err
	}
	u.Role = in.Role
	if err := s.DB.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// RemoveUser soft-deletes a user.
func (s *Service) RemoveUser(ctx context.Context, actorUserID, targetUserID string) error {
	if actorUserID == targetUserID {
		return errors.New("You cannot remove yourself")
	}
	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", targetUserID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrTargetUserNotFound
		}
		return err
	}
	if u.Role == constants.Superadmin {
		var count int64
		s.DB.WithContext(ctx).Model(&models.User{}).Where("role = ?", constants.Superadmin).Count(&count)
		if count <= 1 {
			return ErrLastSuperadmin
		}
	}
	return s.DB.WithContext(ctx).Delete(&u).Error
}
