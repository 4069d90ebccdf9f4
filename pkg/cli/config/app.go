package config

// Version is replaced at build time via -ldflags "-X github.com/secmon-lab/vigia/pkg/cli/config.Version=..."
var Version = "dev"

const (
	AppName  = "vigia"
	AppUsage = "Patient-safety incident reporting and triage service for hospital quality teams"
)
