package dto

import "time"

// ExportResponse points the client at a signed, expiring download.
type ExportResponse struct {
	ExportID    string    `json:"export_id"`
	Filename    string    `json:"filename"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
