package config

// StorageConfig describes the MinIO (S3 compatible) bucket that holds film
// and staff photo assets.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	// PublicURL is the base used to build thumbnail links.  When empty the
	// endpoint itself is used.
	PublicURL string
}

// LoadStorageConfig reads STORAGE_* environment variables.
func LoadStorageConfig() StorageConfig {
	return StorageConfig{
		Endpoint:  envStr("STORAGE_ENDPOINT", "localhost:9000"),
		AccessKey: envStr("STORAGE_ACCESS_KEY", ""),
		SecretKey: envStr("STORAGE_SECRET_KEY", ""),
		UseSSL:    envBool("STORAGE_USE_SSL", false),
		Bucket:    envStr("STORAGE_BUCKET", "media"),
		Region:    envStr("STORAGE_REGION", ""),
		PublicURL: envStr("STORAGE_PUBLIC_URL", ""),
	}
}
