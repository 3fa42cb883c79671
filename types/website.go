package types

import (
	"encoding/json"
	"time"
)

// Website is an owned site document. The content payload is stored
// opaquely; handlers never inspect it beyond JSON validity.
type Website struct {
	// ID is the unique identifier of the website.
	ID string `json:"id" db:"id"`

	// OwnerID references the user who created the website.
	// It is set at creation and never changes.
	OwnerID string `json:"owner_id" db:"owner_id"`

	// Content is the site content payload as raw JSON.
	Content json.RawMessage `json:"content" db:"content"`

	// CreatedAt is the timestamp when the website was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent content update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SiteContent is the structured content shape produced by the
// generative-content service and consumed by the preview templates.
type SiteContent struct {
	Title    string        `json:"title"`
	Hero     HeroSection   `json:"hero"`
	About    AboutSection  `json:"about"`
	Services []SiteService `json:"services"`
}

type HeroSection struct {
	Headline      string `json:"headline"`
	Subheading    string `json:"subheading"`
	CTAButtonText string `json:"cta_button_text"`
}

type AboutSection struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type SiteService struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
