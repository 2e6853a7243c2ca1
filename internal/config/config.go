package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	Sweeper  SweeperConfig  `mapstructure:"sweeper"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication settings. The signing secret comes from
// process configuration only; there is no baked-in fallback.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// StorageConfig selects and configures the attachment storage backend.
// The local backend writes under LocalDir and serves files back under
// PublicPath on the API's own origin. The s3 backend targets an S3-compatible
// object store (MinIO included).
type StorageConfig struct {
	Backend    string `mapstructure:"backend"     validate:"required,oneof=local s3"`
	LocalDir   string `mapstructure:"local_dir"`
	PublicPath string `mapstructure:"public_path"`

	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
}

// SweeperConfig controls the overdue sweeper schedule. By default the sweep
// runs daily at Hour (local wall clock). A non-zero IntervalMinutes switches
// to fixed-interval ticks instead, which is mainly useful in tests and
// staging.
type SweeperConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	Hour            int  `mapstructure:"hour"             validate:"gte=0,lte=23"`
	IntervalMinutes int  `mapstructure:"interval_minutes" validate:"gte=0"`
}
