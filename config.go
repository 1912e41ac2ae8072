package sane

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

const DefaultPort = 6566

const maxTimeoutMillis = 1<<31 - 1 // must fit a non-negative millisecond count

type sessionConfig struct {
	connectTimeout time.Duration
	readTimeout    time.Duration
	credentials    CredentialProvider
	userName       string
}

func defaultSessionConfig() *sessionConfig {
	return &sessionConfig{
		connectTimeout: 30 * time.Second,
		readTimeout:    30 * time.Second,
		userName:       "sane",
	}
}

type SessionOption func(*sessionConfig) error

func WithConnectTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) error {
		if err := checkTimeout(d); err != nil {
			return err
		}
		c.connectTimeout = d
		return nil
	}
}

func WithReadTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) error {
		if err := checkTimeout(d); err != nil {
			return err
		}
		c.readTimeout = d
		return nil
	}
}

// Without credentials, any resource challenge fails with KindAuthDenied.
func WithCredentials(p CredentialProvider) SessionOption {
	return func(c *sessionConfig) error {
		c.credentials = p
		return nil
	}
}

func WithUserName(name string) SessionOption {
	return func(c *sessionConfig) error {
		c.userName = name
		return nil
	}
}

func checkTimeout(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("sane: negative timeout %v", d)
	}
	if d.Milliseconds() > maxTimeoutMillis {
		return fmt.Errorf("sane: timeout %v exceeds maximum representable millisecond count", d)
	}
	return nil
}

// reads [sane] connect_timeout_ms, read_timeout_ms, user; missing keys keep
// their defaults.
func LoadSessionOptionsFromINI(path string) ([]SessionOption, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("sane: load ini config: %w", err)
	}
	section := cfg.Section("sane")
	var opts []SessionOption
	if key := section.Key("connect_timeout_ms"); key.String() != "" {
		ms, err := key.Int()
		if err != nil {
			return nil, fmt.Errorf("sane: parse connect_timeout_ms: %w", err)
		}
		opts = append(opts, WithConnectTimeout(time.Duration(ms)*time.Millisecond))
	}
	if key := section.Key("read_timeout_ms"); key.String() != "" {
		ms, err := key.Int()
		if err != nil {
			return nil, fmt.Errorf("sane: parse read_timeout_ms: %w", err)
		}
		opts = append(opts, WithReadTimeout(time.Duration(ms)*time.Millisecond))
	}
	if user := section.Key("user").String(); user != "" {
		opts = append(opts, WithUserName(user))
	}
	return opts, nil
}
