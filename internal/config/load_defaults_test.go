package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSetDefaults_WebAppDisabled(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	if got := v.GetString("web_app.path"); got != "" {
		t.Fatalf("expected empty default for web_app.path, got %q", got)
	}
}

func TestSetDefaults_RequestTimeout(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	if got := v.GetDuration("server.request_timeout"); got != 30*time.Second {
		t.Fatalf("expected 30s default for server.request_timeout, got %v", got)
	}
}
