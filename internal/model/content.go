package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PageStatus is the publication state of a page.
type PageStatus string

const (
	PageStatusPublished PageStatus = "published"
	PageStatusDraft     PageStatus = "draft"
)

// Page is the top-level content unit addressed by a slug.
type Page struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Slug        string     `json:"slug" db:"slug"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Status      PageStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Section is a typed, ordered container of blocks within a page.
// Settings holds the type-specific JSON document as stored.
type Section struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	PageID    uuid.UUID       `json:"pageId" db:"page_id"`
	Type      string          `json:"type" db:"type"`
	Position  int             `json:"position" db:"position"`
	Visible   bool            `json:"visible" db:"visible"`
	Settings  json.RawMessage `json:"settings" db:"settings"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// Block is the smallest editable unit inside a section.
type Block struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	SectionID    uuid.UUID          `json:"sectionId" db:"section_id"`
	Type         string             `json:"type" db:"type"`
	Position     int                `json:"position" db:"position"`
	Content      string             `json:"content" db:"content"`
	Translations []BlockTranslation `json:"translations"`
	CreatedAt    time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" db:"updated_at"`
}

// BlockTranslation holds language-specific content of a block.
// At most one exists per (block, language).
type BlockTranslation struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BlockID   uuid.UUID `json:"blockId" db:"block_id"`
	Lang      string    `json:"lang" db:"lang"`
	Content   string    `json:"content" db:"content"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PageRequest represents the payload for creating or updating a page.
type PageRequest struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      PageStatus `json:"status"`
}

// SectionRequest represents the payload for creating or updating a section.
type SectionRequest struct {
	Type     string          `json:"type"`
	Position int             `json:"position"`
	Visible  *bool           `json:"visible,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// BlockRequest represents the payload for creating or updating a block.
type BlockRequest struct {
	Type     string `json:"type"`
	Position int    `json:"position"`
	Content  string `json:"content"`
}

// TranslationRequest represents the payload for upserting a block translation.
type TranslationRequest struct {
	Content string `json:"content"`
}

// PageContent is a page with every section and block attached, as edited in the admin surface.
type PageContent struct {
	Page     Page      `json:"page"`
	Sections []Section `json:"sections"`
	Blocks   []Block   `json:"blocks"`
}

// UploadResponse is returned after an image has been stored.
type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
