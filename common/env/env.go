package env

import (
	"os"
	"strconv"
)

// Bool returns the boolean value of the environment variable, or defaultValue
// when the variable is unset or empty.
func Bool(env string, defaultValue bool) bool {
	if env == "" || os.Getenv(env) == "" {
		return defaultValue
	}
	return os.Getenv(env) == "true"
}

// Int returns the integer value of the environment variable, or defaultValue
// when the variable is unset, empty, or not a valid integer.
func Int(env string, defaultValue int) int {
	if env == "" || os.Getenv(env) == "" {
		return defaultValue
	}
	num, err := strconv.Atoi(os.Getenv(env))
	if err != nil {
		return defaultValue
	}
	return num
}

// String returns the value of the environment variable, or defaultValue when
// the variable is unset or empty.
func String(env string, defaultValue string) string {
	if env == "" || os.Getenv(env) == "" {
		return defaultValue
	}
	return os.Getenv(env)
}
