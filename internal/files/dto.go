package files

// UploadResponse is the body returned after a successful direct upload.
type UploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
	Category string `json:"category"`
	Success  bool   `json:"success"`
}
