package envbase

import "os"

// Environment variables the configuration helpers read. They follow the
// 12-factor convention RedisOptions uses for its own settings.
const (
	// EnvStoreURL names the connection descriptor
	EnvStoreURL = "ENVBASE_STORE_URL"

	// EnvCollection names the collection or table
	EnvCollection = "ENVBASE_TABLE"

	// EnvFilePath names the environment file to merge
	EnvFilePath = "ENVBASE_ENV_FILE"
)

// ConfigFromEnv builds a Config from the ENVBASE_* environment variables.
// Unset variables leave the corresponding field empty, so a process with no
// ENVBASE_* configuration gets a valid file-less, store-less Config whose
// initialization is a no-op.
//
// Example deployment:
//
//	// export ENVBASE_STORE_URL=postgres://user:pass@db:5432/app
//	// export ENVBASE_TABLE=app_config
//	session, err := envbase.Load(ctx, envbase.ConfigFromEnv())
func ConfigFromEnv() Config {
	return Config{
		EnvFile:    os.Getenv(EnvFilePath),
		Store:      storeDescriptorFromEnv(),
		Collection: os.Getenv(EnvCollection),
	}
}

// ConfigFromEnvWithOverrides returns a Config with explicit overrides for
// the three settings. Empty strings fall back to the environment variables,
// mirroring RedisOptionsWithOverrides.
func ConfigFromEnvWithOverrides(envFile, storeURL, collection string) Config {
	cfg := ConfigFromEnv()

	if envFile != "" {
		cfg.EnvFile = envFile
	}
	if storeURL != "" {
		cfg.Store = storeURL
	}
	if collection != "" {
		cfg.Collection = collection
	}
	return cfg
}

// storeDescriptorFromEnv keeps Config.Store nil when the variable is unset;
// an empty-string descriptor would classify as unrecognized instead of
// meaning "no store".
func storeDescriptorFromEnv() interface{} {
	if url := os.Getenv(EnvStoreURL); url != "" {
		return url
	}
	return nil
}
