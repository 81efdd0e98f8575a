package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workspace is a lawyer-firm account. Every client, lead, task and team member belongs to one.
type Workspace struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name         string  `gorm:"not null" json:"name"`
	Slug         string  `gorm:"uniqueIndex;not null" json:"slug"`
	Country      string  `gorm:"not null;default:CA" json:"country"`
	Timezone     string  `gorm:"not null;default:America/Toronto" json:"timezone"`
	BillingEmail string  `json:"billing_email"`
	OwnerID      *string `gorm:"type:uuid;index" json:"owner_id,omitempty"`

	Users []User `gorm:"foreignKey:WorkspaceID" json:"-"`
}

// BeforeCreate hook to generate UUID and slug
func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.Slug == "" {
		w.Slug = generateSlug(tx, w.Name)
	}
	return nil
}

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes       = regexp.MustCompile(`-+`)
)

// generateSlug builds a unique URL-friendly slug from the workspace name
func generateSlug(tx *gorm.DB, name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > 50 {
		slug = strings.TrimRight(slug[:50], "-")
	}
	if slug == "" {
		slug = "workspace"
	}

	base := slug
	for counter := 1; ; counter++ {
		var count int64
		tx.Model(&Workspace{}).Where("slug = ?", slug).Count(&count)
		if count == 0 {
			return slug
		}
		slug = base + "-" + strconv.Itoa(counter)
	}
}

// TableName specifies the table name for Workspace model
func (Workspace) TableName() string {
	return "workspaces"
}
