// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging); AppConfig carries
// everything specific to CollabHub.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)

	// Object storage (uploads and call transcripts)
	S3Region string
	S3Bucket string

	// 100ms call-provisioning service
	HMSBaseURL            string
	HMSAccessKey          string
	HMSSecret             string
	HMSTemplateDefault    string
	HMSTemplateTranscript string
	HMSTemplateFull       string

	// Abuse limits
	SignInRateLimit   int           // sign-in attempts per window per IP
	SignInRateWindow  time.Duration // sign-in rate window
	MessageRateLimit  int           // chat messages per window per user
	MessageRateWindow time.Duration // message rate window
}
