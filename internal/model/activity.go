package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/kart-io/datasphere/pkg/utils/id"
	"github.com/kart-io/datasphere/pkg/utils/json"
)

// Comment is a user's remark on a dataset.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:26"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	UserID    string    `json:"userId" gorm:"size:128;not null;index:idx_comment_user"`
	DatasetID string    `json:"datasetId" gorm:"size:26;not null;index:idx_comment_dataset"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the table name for GORM.
func (c *Comment) TableName() string {
	return "comments"
}

// MarshalJSON renders the author as its public summary.
func (c Comment) MarshalJSON() ([]byte, error) {
	type plain Comment
	return json.Marshal(struct {
		plain
		User *UserSummary `json:"user,omitempty"`
	}{plain: plain(c), User: c.User.Summary()})
}

// BeforeCreate assigns the ID and creation time.
func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = id.NewULID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return
}

// Like records that a user liked a dataset. At most one row per (user, dataset).
type Like struct {
	ID        string    `json:"id" gorm:"primaryKey;size:26"`
	UserID    string    `json:"userId" gorm:"size:128;not null;uniqueIndex:uk_like_user_dataset,priority:1"`
	DatasetID string    `json:"datasetId" gorm:"size:26;not null;uniqueIndex:uk_like_user_dataset,priority:2;index:idx_like_dataset"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

// TableName returns the table name for GORM.
func (l *Like) TableName() string {
	return "likes"
}

// BeforeCreate assigns the ID and creation time.
func (l *Like) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = id.NewULID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	return
}

// Notification types.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
)

// Notification informs a dataset owner about activity on their dataset.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;size:26"`
	UserID    string    `json:"-" gorm:"size:128;not null;index:idx_notification_user_read,priority:1"`
	Type      string    `json:"type" gorm:"size:16;not null"`
	Content   string    `json:"content" gorm:"size:1024;not null"`
	RefID     string    `json:"refId" gorm:"size:26"`
	IsRead    bool      `json:"isRead" gorm:"not null;default:false;index:idx_notification_user_read,priority:2"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

// TableName returns the table name for GORM.
func (n *Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns the ID and creation time.
func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = id.NewULID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return
}

// All returns every model managed by AutoMigrate, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Dataset{},
		&DatasetTag{},
		&Comment{},
		&Like{},
		&Notification{},
	}
}
