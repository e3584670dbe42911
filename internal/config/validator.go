package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

var ErrInvalid = errors.New("invalid config")

// FieldError names the config key at fault, in the dotted form used by
// files and DRAW_ env vars.
type FieldError struct {
	Key    string
	Value  any
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s=%q %s", e.Key, fmt.Sprint(e.Value), e.Reason)
}

func (e FieldError) Unwrap() error { return ErrInvalid }

func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

func ValidStoreDrivers() []string {
	return []string{"memory", "postgres"}
}

// Validate returns every problem at once, combined with multierr.
// multierr.Errors splits the result back into FieldErrors.
func (c *Config) Validate() error {
	var err error
	bad := func(key string, value any, reason string) {
		err = multierr.Append(err, FieldError{Key: key, Value: value, Reason: reason})
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		bad("server.addr", c.Server.Addr, "is empty")
	}

	if c.Draw.RevealDelay < 0 {
		bad("draw.reveal_delay", c.Draw.RevealDelay, "is negative")
	}
	if c.Draw.AutoInterval <= 0 {
		bad("draw.auto_interval", c.Draw.AutoInterval, "must be above zero")
	}

	if !slices.Contains(ValidStoreDrivers(), c.Store.Driver) {
		bad("store.driver", c.Store.Driver, "is not "+strings.Join(ValidStoreDrivers(), " or "))
	}
	if c.Store.Driver == "postgres" && c.Store.DSN == "" {
		bad("store.dsn", c.Store.DSN, "is needed by the postgres store")
	}

	if c.Commentary.Timeout <= 0 {
		bad("commentary.timeout", c.Commentary.Timeout, "must be above zero")
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		bad("logging.level", c.Logging.Level, "is not one of "+strings.Join(ValidLogLevels(), ", "))
	}

	return err
}
