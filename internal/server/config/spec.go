// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for revgate-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Redis  RedisSection  `koanf:"redis"`
	Cache  CacheSection  `koanf:"cache"`
	Auth   AuthSection   `koanf:"auth"`
	Audit  AuditSection  `koanf:"audit"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`

	// LocalSocket is the Unix domain socket path for ungated local
	// admin access. Empty disables the local listener.
	LocalSocket string `koanf:"local_socket"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// RedisSection configures the shared revocation tier.
type RedisSection struct {
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	PoolSize     int           `koanf:"pool_size"`
}

// CacheSection configures the local tier and the read-path caches.
type CacheSection struct {
	// JanitorInterval is how often the local tier sweeps expired
	// revocation entries. Zero keeps the built-in default.
	JanitorInterval time.Duration `koanf:"janitor_interval"`

	ResultCacheSize int           `koanf:"result_cache_size"`
	ResultCacheTTL  time.Duration `koanf:"result_cache_ttl"`
	StatsCacheTTL   time.Duration `koanf:"stats_cache_ttl"`
}

// AuthSection configures credential issuance and verification.
type AuthSection struct {
	// Secret is the HMAC signing secret. Required, at least 32 bytes.
	Secret string `koanf:"secret"`

	// Issuer is the iss claim stamped into issued credentials.
	Issuer string `koanf:"issuer"`

	AccessLifetime  time.Duration `koanf:"access_lifetime"`
	RefreshLifetime time.Duration `koanf:"refresh_lifetime"`
}

// AuditSection configures the append-only revocation archive.
type AuditSection struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`

	// Passphrase enables at-rest encryption of archive entries when
	// non-empty.
	Passphrase string `koanf:"passphrase"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
