package domain

import "time" // Timestamps

// Role values stored in users.role
const (
	RoleAdmin  = "admin"  // Sees all reports, uploads reports
	RoleClient = "client" // Sees only own reports
)

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey"`                      // Primary key
	Username     string    `gorm:"size:64;uniqueIndex;not null"`    // Unique login name
	PasswordHash string    `gorm:"size:255;not null" json:"-"`      // bcrypt hash, never rendered
	Role         string    `gorm:"size:16;not null;default:client"` // Role: admin or client
	Email        string    `gorm:"size:255"`                        // Notification address, may be empty
	Name         string    `gorm:"size:255"`                        // Display name
	CreatedAt    time.Time // Provisioning time

	// Reports owned by a client; declares the reports.client_id foreign key
	Reports []Report `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"-"`
}

// IsClient reports whether the user holds the client role
func (u *User) IsClient() bool {
	return u != nil && u.Role == RoleClient
}

// SessionUser is the identity kept in a session after login
type SessionUser struct {
	ID       uint   `json:"id"`       // User ID
	Username string `json:"username"` // Username
	Role     string `json:"role"`     // User role
}

// NewSessionUser projects a stored user into its session identity
func NewSessionUser(u *User) *SessionUser {
	return &SessionUser{ID: u.ID, Username: u.Username, Role: u.Role}
}

// IsAdmin reports whether the session belongs to an administrator
func (s *SessionUser) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
