package config

import (
	"testing"

	"github.com/adrg/xdg"
)

func TestTokenPrecedence(t *testing.T) {
	t.Setenv(envToken, "env-token")

	if got := Token("flag-token"); got != "flag-token" {
		t.Errorf("Token(flag) = %q, want flag value", got)
	}
	if got := Token(""); got != "env-token" {
		t.Errorf("Token(\"\") = %q, want env value", got)
	}
}

func TestTokenMissing(t *testing.T) {
	t.Setenv(envToken, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	if got := Token(""); got != "" {
		t.Errorf("Token(\"\") = %q, want empty", got)
	}
}

func TestSearchKeyFallback(t *testing.T) {
	t.Setenv(envSearchKey, "")
	t.Setenv(envSearchKeyAlt, "alt-key")
	if got := SearchKey(); got != "alt-key" {
		t.Errorf("SearchKey() = %q, want %q", got, "alt-key")
	}

	t.Setenv(envSearchKey, "primary-key")
	if got := SearchKey(); got != "primary-key" {
		t.Errorf("SearchKey() = %q, want %q", got, "primary-key")
	}
}

func TestAPIBase(t *testing.T) {
	t.Setenv(envAPIBase, "")
	if got := APIBase(""); got != DefaultAPIBase {
		t.Errorf("APIBase(\"\") = %q, want default", got)
	}
	if got := APIBase("http://localhost:9999/"); got != "http://localhost:9999" {
		t.Errorf("APIBase(flag) = %q, want trailing slash trimmed", got)
	}

	t.Setenv(envAPIBase, "https://alt.example")
	if got := APIBase(""); got != "https://alt.example" {
		t.Errorf("APIBase(env) = %q, want env value", got)
	}
}
