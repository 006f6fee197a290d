package model

import (
	"time"

	"gorm.io/gorm"
)

// Role values stored on User.Role.
const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// User represents a registered account. ID is the identity provider subject.
type User struct {
	ID            string    `json:"id" gorm:"primaryKey;size:128;comment:身份提供方 UID"`
	Name          string    `json:"name" gorm:"size:128;not null;comment:用户名"`
	Email         string    `json:"email" gorm:"size:255;not null;uniqueIndex:uk_user_email;comment:邮箱"`
	Avatar        *string   `json:"avatar" gorm:"size:1024;comment:头像URL"`
	Role          string    `json:"role" gorm:"size:16;not null;default:USER;index:idx_user_role;comment:角色"`
	Contributions int       `json:"contributions" gorm:"not null;default:0;index:idx_user_contributions;comment:贡献数"`
	CreatedAt     time.Time `json:"createdAt" gorm:"not null;comment:创建时间"`

	Datasets []Dataset `json:"datasets,omitempty" gorm:"foreignKey:CreatedBy;references:ID"`
}

// TableName returns the table name for GORM.
func (u *User) TableName() string {
	return "users"
}

// BeforeCreate fills defaults that the database cannot.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	return
}

// UserSummary is the public subset of a user embedded in other resources.
type UserSummary struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// Summary returns the public subset of u.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
