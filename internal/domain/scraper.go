package domain

import "time"

// ScraperResult is the boundary record produced by platform scrapers.
// The engine does not run extraction itself: upstream code enriches the
// converted descriptor with keyframes, OCR, audio fingerprints, etc.
type ScraperResult struct {
	URL          string            `json:"url"`
	Platform     string            `json:"platform"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	VideoURL     string            `json:"video_url,omitempty"`
	AudioURL     string            `json:"audio_url,omitempty"`
	Uploader     string            `json:"uploader,omitempty"`
	UploadedAt   time.Time         `json:"uploaded_at,omitempty"`
	ViewCount    int64             `json:"view_count,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Descriptor converts the scraper record into a content descriptor carrying
// the identity and text fields. Media signals are filled in by the
// extraction pipeline before scoring.
func (r ScraperResult) Descriptor() ContentDescriptor {
	return ContentDescriptor{
		ID:          r.URL,
		SourceURL:   r.URL,
		Platform:    r.Platform,
		Title:       r.Title,
		Description: r.Description,
	}
}
