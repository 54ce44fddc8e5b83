// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, request limits). AppConfig is everything specific to
// BillTrack: database connection, session cookies, document storage,
// OAuth, and audit logging.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: billtrack-session)
	SessionDomain string // Cookie domain (blank means current host)

	// CSRF protection
	CSRFKey string // 32-byte key for CSRF token signing (falls back to SessionKey when blank)

	// Bill document storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads/documents")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files/documents")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region string // AWS region
	StorageS3Bucket string // S3 bucket name
	StorageS3Prefix string // Key prefix (e.g., "documents/")

	// Base URL for OAuth callbacks (e.g., "https://billtrack.example.com")
	BaseURL string

	// Audit logging settings: "all" (db+log), "db", "log", or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Google OAuth configuration (both blank disables Google sign-in)
	GoogleClientID     string
	GoogleClientSecret string

	// Admin bootstrap
	AdminEmail string // Email of a user promoted to global admin on startup
}
