package models

import (
	"time"

	"gorm.io/gorm"
)

// Column is a kanban board column. Position is a zero-based ordering index
// within one project.
type Column struct {
	gorm.Model
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	Name      string `gorm:"not null" json:"name"`
	Position  int    `gorm:"not null;default:0" json:"position"`

	// Relations
	Project Project `json:"-"`
	Cards   []Card  `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"cards,omitempty"`
}

// Card is a single task on the board
type Card struct {
	gorm.Model
	ColumnID    uint       `gorm:"not null;index" json:"column_id"`
	CreatedByID uint       `gorm:"not null" json:"created_by_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Position    int        `gorm:"not null;default:0" json:"position"`
	DueDate     *time.Time `json:"due_date,omitempty"`

	// Relations
	Column      Column           `json:"-"`
	CreatedBy   User             `gorm:"foreignKey:CreatedByID" json:"-"`
	Assignments []CardAssignment `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	Comments    []Comment        `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Labels      []CardLabel      `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"labels,omitempty"`
	Attachments []Attachment     `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// CardAssignment ties an assignee to a card. Unique per (card, user).
type CardAssignment struct {
	gorm.Model
	CardID       uint `gorm:"not null;uniqueIndex:idx_card_user" json:"card_id"`
	UserID       uint `gorm:"not null;uniqueIndex:idx_card_user;index" json:"user_id"`
	AssignedByID uint `gorm:"not null" json:"assigned_by_id"`

	// Relations
	Card       Card `json:"-"`
	User       User `json:"-"`
	AssignedBy User `gorm:"foreignKey:AssignedByID" json:"-"`
}

// Label is a project-scoped tag for cards
type Label struct {
	gorm.Model
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	Name      string `gorm:"not null" json:"name"`
	Color     string `gorm:"default:'#808080'" json:"color"`

	// Relations
	Project Project `json:"-"`
}

// CardLabel attaches a label to a card. Unique per (card, label).
type CardLabel struct {
	gorm.Model
	CardID  uint `gorm:"not null;uniqueIndex:idx_card_label" json:"card_id"`
	LabelID uint `gorm:"not null;uniqueIndex:idx_card_label;index" json:"label_id"`

	// Relations
	Card  Card  `json:"-"`
	Label Label `json:"-"`
}
