package models

import "gorm.io/gorm"

// Comment is a user-authored note on a card. Authorship matters for
// permission checks: editing someone else's comment needs delete-level
// permission.
type Comment struct {
	gorm.Model
	CardID   uint   `gorm:"not null;index" json:"card_id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Body     string `gorm:"not null" json:"body"`
	Edited   bool   `gorm:"default:false" json:"edited"`

	// Relations
	Card   Card `json:"-"`
	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

// Attachment stores file metadata for a card upload. The blob itself lives
// in external storage; only the descriptor is kept here.
type Attachment struct {
	gorm.Model
	CardID       uint   `gorm:"not null;index" json:"card_id"`
	UploadedByID uint   `gorm:"not null" json:"uploaded_by_id"`
	FileName     string `gorm:"not null" json:"file_name"`
	ContentType  string `json:"content_type"`
	SizeBytes    int64  `json:"size_bytes"`
	StorageKey   string `gorm:"not null" json:"-"`

	// Relations
	Card       Card `json:"-"`
	UploadedBy User `gorm:"foreignKey:UploadedByID" json:"-"`
}
