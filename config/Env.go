package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// env reads typed values from environment variables, falling back to
// a default when a variable is unset or empty. The first malformed
// value is kept and reported by Err.
type env struct {
	lookup func(string) (string, bool)
	err    error
}

func newEnv() *env {
	return &env{lookup: os.LookupEnv}
}

func (e *env) get(key string) (string, bool) {
	value, ok := e.lookup(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func (e *env) fail(key, value string, err error) {
	if e.err == nil {
		e.err = errors.Wrapf(err, "%v=%q", key, value)
	}
}

// String returns the value of key, or fallback
func (e *env) String(key, fallback string) string {
	if value, ok := e.get(key); ok {
		return value
	}
	return fallback
}

// Float returns the value of key parsed as a float64, or fallback
func (e *env) Float(key string, fallback float64) float64 {
	value, ok := e.get(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		e.fail(key, value, err)
		return fallback
	}
	return parsed
}

// Int returns the value of key parsed as an int, or fallback
func (e *env) Int(key string, fallback int) int {
	value, ok := e.get(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, value, err)
		return fallback
	}
	return parsed
}

// Uint returns the value of key parsed as a uint64, or fallback
func (e *env) Uint(key string, fallback uint64) uint64 {
	value, ok := e.get(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		e.fail(key, value, err)
		return fallback
	}
	return parsed
}

// Bool returns the value of key parsed as a bool, or fallback
func (e *env) Bool(key string, fallback bool) bool {
	value, ok := e.get(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		e.fail(key, value, err)
		return fallback
	}
	return parsed
}

// Err returns the first parse error
func (e *env) Err() error {
	return e.err
}
