package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar   = "PORT"
	bindEnvVar   = "BIND_ADDR"
	appNameVar   = "APP_NAME"
	folderEnvVar = "FOLDER"
	envVar       = "ENV"
)

const defaultBindAddr = "127.0.0.1"

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetListenAddr is BIND_ADDR:PORT. Anyone who can reach the console acts as
// the logged-in operator, so it binds to loopback unless BIND_ADDR is set.
func (EnvVars) GetListenAddr() string {
	port := strings.TrimPrefix(GetEnv(portEnvVar, "3000"), ":")
	return net.JoinHostPort(GetEnv(bindEnvVar, defaultBindAddr), port)
}

// IsLoopback reports whether addr only accepts connections from this host.
func IsLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Product Management")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt falls back to defaultValue when the variable is unset or not a number.
func GetEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvDuration accepts Go duration syntax ("15s", "2m").
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
