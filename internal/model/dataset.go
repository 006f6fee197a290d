package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/kart-io/datasphere/pkg/utils/id"
	"github.com/kart-io/datasphere/pkg/utils/json"
)

// Dataset is the metadata of an externally hosted dataset.
type Dataset struct {
	ID          string    `json:"id" gorm:"primaryKey;size:26"`
	Title       string    `json:"title" gorm:"size:255;not null;comment:标题"`
	Description *string   `json:"description" gorm:"type:text;comment:描述"`
	URL         string    `json:"url" gorm:"column:url;size:2048;not null;comment:文件链接"`
	Category    *string   `json:"category" gorm:"size:128;index:idx_dataset_category;comment:分类"`
	Size        *float64  `json:"size" gorm:"comment:大小(MB)"`
	CreatedBy   string    `json:"createdBy" gorm:"size:128;not null;index:idx_dataset_created_by;comment:创建人"`
	IsVerified  bool      `json:"isVerified" gorm:"not null;default:false;comment:是否已审核"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null;index:idx_dataset_created_at"`

	Contributor *User     `json:"contributor,omitempty" gorm:"foreignKey:CreatedBy;references:ID"`
	Tags        []Tag     `json:"tags" gorm:"many2many:dataset_tags;joinForeignKey:DatasetID;joinReferences:TagID"`
	Comments    []Comment `json:"comments,omitempty" gorm:"foreignKey:DatasetID"`

	LikeCount    int64 `json:"likeCount" gorm:"-"`
	CommentCount int64 `json:"commentCount" gorm:"-"`
}

// TableName returns the table name for GORM.
func (d *Dataset) TableName() string {
	return "datasets"
}

// MarshalJSON renders the contributor as its public summary.
func (d Dataset) MarshalJSON() ([]byte, error) {
	type plain Dataset
	return json.Marshal(struct {
		plain
		Contributor *UserSummary `json:"contributor,omitempty"`
	}{plain: plain(d), Contributor: d.Contributor.Summary()})
}

// BeforeCreate assigns the ID and creation time.
func (d *Dataset) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = id.NewULID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	return
}

// Tag is a free-form label, unique by name.
type Tag struct {
	ID   string `json:"id" gorm:"primaryKey;size:26"`
	Name string `json:"name" gorm:"size:64;not null;uniqueIndex:uk_tag_name"`
}

// TableName returns the table name for GORM.
func (t *Tag) TableName() string {
	return "tags"
}

// BeforeCreate assigns the ID.
func (t *Tag) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = id.NewULID()
	}
	return
}

// DatasetTag joins datasets and tags.
type DatasetTag struct {
	DatasetID string `gorm:"primaryKey;size:26"`
	TagID     string `gorm:"primaryKey;size:26;index:idx_dataset_tag_tag"`
}

// TableName returns the table name for GORM.
func (dt *DatasetTag) TableName() string {
	return "dataset_tags"
}
