package accounts

import (
	"strings"

	"github.com/agentstation/coursemap/pkg/constants"
)

// Role is an account role.
type Role string

// Roles.
const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// String returns the string representation of a Role.
func (r Role) String() string {
	return string(r)
}

// ParseRole matches a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleStudent, RoleTeacher, RoleAdmin} {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// User is a stored local account. Password holds a bcrypt hash; records
// written by older clients may still hold plaintext until their next login.
type User struct {
	ID        string `json:"id" yaml:"id"`
	Email     string `json:"email" yaml:"email"`
	Password  string `json:"password,omitempty" yaml:"-"`
	Role      Role   `json:"role" yaml:"role"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	DOB       string `json:"dob,omitempty" yaml:"dob,omitempty"`
	Address   string `json:"address,omitempty" yaml:"address,omitempty"`
	Phone     string `json:"phone,omitempty" yaml:"phone,omitempty"`
	PhotoURL  string `json:"photoURL,omitempty" yaml:"photoURL,omitempty"`
	TeacherID string `json:"teacherId,omitempty" yaml:"teacherId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// GetID returns the user id.
func (u User) GetID() string {
	return u.ID
}

// EffectiveRole is the stored role, else admin for admin-domain emails, else student.
func (u User) EffectiveRole() Role {
	if u.Role != "" {
		return u.Role
	}
	if IsAdminEmail(u.Email) {
		return RoleAdmin
	}
	return RoleStudent
}

// Session is the signed-in user as persisted under the session key.
type Session struct {
	ID          string `json:"id" yaml:"id"`
	UID         string `json:"uid" yaml:"uid"`
	Email       string `json:"email" yaml:"email"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty" yaml:"photoURL,omitempty"`
	DOB         string `json:"dob,omitempty" yaml:"dob,omitempty"`
	Address     string `json:"address,omitempty" yaml:"address,omitempty"`
	TeacherID   string `json:"teacherId,omitempty" yaml:"teacherId,omitempty"`
	Role        Role   `json:"role" yaml:"role"`
}

// IsAdmin reports whether the session has the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func sessionFor(u User) Session {
	return Session{
		ID:          u.ID,
		UID:         u.ID,
		Email:       u.Email,
		DisplayName: u.Name,
		PhotoURL:    u.PhotoURL,
		DOB:         u.DOB,
		Address:     u.Address,
		TeacherID:   u.TeacherID,
		Role:        u.EffectiveRole(),
	}
}

// IsAdminEmail reports whether email belongs to the admin domain.
func IsAdminEmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), constants.AdminEmailSuffix)
}
