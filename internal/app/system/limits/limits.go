// internal/app/system/limits/limits.go
package limits

// Request body size limits. These prevent memory exhaustion from
// oversized requests; handlers wrap r.Body with http.MaxBytesReader.
const (
	// MaxJSONBodySize bounds ordinary JSON request bodies.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxMessageTextSize bounds a single chat message's text.
	MaxMessageTextSize = 16 << 10 // 16 KB

	// MaxUploadSize bounds a single file upload.
	MaxUploadSize = 64 << 20 // 64 MB
)
