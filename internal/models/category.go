package models

// Defaults applied when a category is created without an icon or color.
const (
	DefaultCategoryIcon  = "fas fa-tag"
	DefaultCategoryColor = "#3B82F6"
)

// Category is a named spending bucket. Names are not unique per user.
// IsDefault is stored as an integer flag (0 or 1).
type Category struct {
	Base
	UserID    string `gorm:"size:255;not null;index" json:"user_id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	Icon      string `gorm:"size:50;not null;default:'fas fa-tag'" json:"icon"`
	Color     string `gorm:"size:7;not null;default:'#3B82F6'" json:"color"`
	IsDefault int    `gorm:"not null;default:0" json:"is_default"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Protected reports whether the category is a default one that users may
// not delete.
func (c *Category) Protected() bool {
	return c.IsDefault != 0
}
