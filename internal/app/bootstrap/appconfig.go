// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, and request body limits. AppConfig is
// where everything specific to Harbor lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: harbor-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Attachment storage
	BlobDir string // Directory for uploaded attachment bytes

	// Browser origins allowed for CORS and the realtime stream
	AllowedOrigins []string

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@harbor.chat)
	MailEnabled  bool   // When false, mail is logged instead of sent

	// Sign-in code settings
	CodeExpiry time.Duration // One-time code lifetime

	// Identity
	SiteName string // Display name used in emails
	BaseURL  string // Externally visible origin, e.g. "https://harbor.chat"

	// OAuth providers (empty client id disables the provider)
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
}
