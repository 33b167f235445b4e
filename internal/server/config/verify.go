// Package config defines the server configuration structure.
package config

import (
	"errors"
	"os"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyAuth(&cfg.Auth); err != nil {
		return err
	}
	if err := verifyCache(&cfg.Cache); err != nil {
		return err
	}
	if err := verifyAudit(&cfg.Audit); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	// TLS is all-or-nothing
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	return nil
}

func verifyAuth(cfg *AuthSection) error {
	if cfg.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if len(cfg.Secret) < 32 {
		return errors.New("auth.secret must be at least 32 bytes")
	}
	return nil
}

func verifyCache(cfg *CacheSection) error {
	if cfg.ResultCacheSize < 1 {
		return errors.New("cache.result_cache_size must be at least 1")
	}
	if cfg.ResultCacheTTL <= 0 {
		return errors.New("cache.result_cache_ttl must be positive")
	}
	return nil
}

func verifyAudit(cfg *AuditSection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return errors.New("audit.dir is required when audit is enabled")
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return errors.New("cannot create audit directory: " + err.Error())
	}
	return nil
}
