// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CollabHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: COLLABHUB_MONGO_URI, COLLABHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "collabhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "collabhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Object storage for file uploads and call transcripts
	{Name: "s3_region", Default: "", Desc: "AWS region for the upload bucket"},
	{Name: "s3_bucket", Default: "", Desc: "S3 bucket for uploads and transcripts"},

	// 100ms call provisioning
	{Name: "hms_base_url", Default: "https://api.100ms.live", Desc: "100ms management API base URL"},
	{Name: "hms_access_key", Default: "", Desc: "100ms app access key"},
	{Name: "hms_secret", Default: "", Desc: "100ms app secret"},
	{Name: "hms_template_default", Default: "", Desc: "100ms template id for plain call rooms"},
	{Name: "hms_template_transcript", Default: "", Desc: "100ms template id for transcript rooms"},
	{Name: "hms_template_full", Default: "", Desc: "100ms template id for full-recording rooms"},

	// Abuse limits
	{Name: "signin_rate_limit", Default: 10, Desc: "Sign-in attempts allowed per window per IP"},
	{Name: "signin_rate_window", Default: "1m", Desc: "Sign-in rate window (e.g. 1m, 30s)"},
	{Name: "message_rate_limit", Default: 30, Desc: "Chat messages allowed per window per user"},
	{Name: "message_rate_window", Default: "10s", Desc: "Message rate window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COLLABHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		S3Region: appValues.String("s3_region"),
		S3Bucket: appValues.String("s3_bucket"),

		HMSBaseURL:            appValues.String("hms_base_url"),
		HMSAccessKey:          appValues.String("hms_access_key"),
		HMSSecret:             appValues.String("hms_secret"),
		HMSTemplateDefault:    appValues.String("hms_template_default"),
		HMSTemplateTranscript: appValues.String("hms_template_transcript"),
		HMSTemplateFull:       appValues.String("hms_template_full"),

		SignInRateLimit:   appValues.Int("signin_rate_limit"),
		SignInRateWindow:  appValues.Duration("signin_rate_window", time.Minute),
		MessageRateLimit:  appValues.Int("message_rate_limit"),
		MessageRateWindow: appValues.Duration("message_rate_window", 10*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked up front so a typo fails fast instead of
// hanging on the first connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" && appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("session_key must be set in production")
	}

	// Call provisioning is optional, but partial credentials are a
	// config mistake, not a choice.
	if (appCfg.HMSAccessKey == "") != (appCfg.HMSSecret == "") {
		return fmt.Errorf("hms_access_key and hms_secret must be set together")
	}

	return nil
}
