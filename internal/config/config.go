// Package config resolves credentials and endpoints from flags, the
// environment, and the user config directory, in that order.
package config

import (
	"os"
	"strings"

	"github.com/adrg/xdg"
)

const (
	// DefaultAPIBase is the download service consumed by this client.
	DefaultAPIBase = "https://api.songreel.app"

	envToken     = "SONGREEL_TOKEN"
	envAPIBase   = "SONGREEL_API"
	envSearchKey = "SONGREEL_YT_KEY"
	// envSearchKeyAlt matches what most YouTube tooling already exports.
	envSearchKeyAlt = "YOUTUBE_API_KEY"

	tokenFile = "songreel/token"
)

// Token returns the bearer token for the download service: flag value
// first, then the environment, then the config-dir token file. Empty
// means the user is not signed in.
func Token(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if token := os.Getenv(envToken); token != "" {
		return token
	}
	path, err := xdg.SearchConfigFile(tokenFile)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveToken writes the token to the config-dir token file.
func SaveToken(token string) error {
	path, err := xdg.ConfigFile(tokenFile)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.TrimSpace(token)+"\n"), 0o600)
}

// SearchKey returns the keyed search API credential, if configured.
func SearchKey() string {
	if key := os.Getenv(envSearchKey); key != "" {
		return key
	}
	return os.Getenv(envSearchKeyAlt)
}

// APIBase returns the download service base URL.
func APIBase(flagValue string) string {
	if flagValue != "" {
		return strings.TrimRight(flagValue, "/")
	}
	if base := os.Getenv(envAPIBase); base != "" {
		return strings.TrimRight(base, "/")
	}
	return DefaultAPIBase
}
