// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:5280"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	DefaultRedisAddr         = "127.0.0.1:6379"
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolSize     = 10

	DefaultJanitorInterval = time.Minute
	DefaultResultCacheSize = 16384
	DefaultResultCacheTTL  = 90 * time.Second
	DefaultStatsCacheTTL   = 5 * time.Minute

	DefaultIssuer          = "revgate"
	DefaultAccessLifetime  = 30 * time.Minute
	DefaultRefreshLifetime = 30 * 24 * time.Hour

	DefaultAuditDir = "/var/lib/revgate/audit"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ReadTimeout:     DefaultReadTimeout,
				WriteTimeout:    DefaultWriteTimeout,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		Redis: RedisSection{
			Addr:         DefaultRedisAddr,
			DialTimeout:  DefaultRedisDialTimeout,
			ReadTimeout:  DefaultRedisReadTimeout,
			WriteTimeout: DefaultRedisWriteTimeout,
			PoolSize:     DefaultRedisPoolSize,
		},
		Cache: CacheSection{
			JanitorInterval: DefaultJanitorInterval,
			ResultCacheSize: DefaultResultCacheSize,
			ResultCacheTTL:  DefaultResultCacheTTL,
			StatsCacheTTL:   DefaultStatsCacheTTL,
		},
		Auth: AuthSection{
			Issuer:          DefaultIssuer,
			AccessLifetime:  DefaultAccessLifetime,
			RefreshLifetime: DefaultRefreshLifetime,
		},
		Audit: AuditSection{
			Enabled: false,
			Dir:     DefaultAuditDir,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
