package api

import "encoding/json"

// User is the authenticated identity returned by the backend.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// LoginResponse is the payload returned by POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// RefreshResponse is the payload returned by POST /auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Group is a named partition of the uploaded archive's contents.
type Group struct {
	Name      string `json:"name"`
	FileCount int    `json:"file_count"`
	SizeBytes int64  `json:"size"`
}

// ScanSummary aggregates counts across a scan.
type ScanSummary struct {
	TotalGroups int `json:"total_groups"`
	TotalFiles  int `json:"total_files"`
}

// ScanResponse is the payload returned by POST /conversion/scan.
type ScanResponse struct {
	SessionID string       `json:"session_id"`
	Groups    []Group      `json:"groups"`
	Summary   *ScanSummary `json:"summary"`
	XMLCount  int          `json:"xml_count"`
}

// ConvertStats carries backend-reported conversion counters.
type ConvertStats struct {
	Converted int `json:"converted"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// ConvertResponse is the payload returned by POST /conversion/convert.
type ConvertResponse struct {
	Success bool         `json:"success"`
	Stats   ConvertStats `json:"stats"`
}

// ConvertedFile is one output file, always attributable to a group.
type ConvertedFile struct {
	Filename string `json:"filename"`
	Group    string `json:"group"`
}

// FileListing is the payload returned by GET /conversion/files/{session}.
type FileListing struct {
	Groups     []Group         `json:"groups"`
	Files      []ConvertedFile `json:"files"`
	TotalFiles int             `json:"total_files"`
}

// PreviewPayload is the row-capped rendering of one converted file. When the
// backend responds with something other than the columns/rows shape, Raw
// holds the body verbatim and the structured fields stay empty.
type PreviewPayload struct {
	Filename  string     `json:"filename"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
	Raw       []byte     `json:"-"`
}

func decodePreview(filename string, body []byte) *PreviewPayload {
	preview := &PreviewPayload{Filename: filename}
	if err := json.Unmarshal(body, preview); err != nil || len(preview.Columns) == 0 {
		return &PreviewPayload{Filename: filename, Raw: body}
	}
	preview.Filename = filename
	return preview
}
