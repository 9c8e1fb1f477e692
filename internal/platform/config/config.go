package config

import (
	"os"
)

// Engine captures process-level configuration for the enforcement engine.
type Engine struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// PrettyReport indents the audit report JSON emitted by rimctl.
	PrettyReport bool
	// AnchorMirrorDSN, when set, enables the durable postgres mirror of the
	// receipt anchor. Empty disables mirroring; the in-memory anchor is
	// always canonical.
	AnchorMirrorDSN string
}

// FromEnv builds an Engine config from environment variables so main stays lean.
func FromEnv() Engine {
	level := os.Getenv("RECIPROCITY_LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return Engine{
		LogLevel:        level,
		PrettyReport:    os.Getenv("RECIPROCITY_PRETTY_REPORT") == "true",
		AnchorMirrorDSN: os.Getenv("ANCHOR_MIRROR_DSN"),
	}
}
