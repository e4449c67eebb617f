package config

import "time"

// Diff defaults.
const (
	DefaultDialect   = "ansi"
	DefaultFormat    = "unified"
	DefaultDeltaOnly = false
	DefaultColor     = "auto"
	DefaultF         = 0.6
	DefaultT         = 0.6
)

// Input defaults.
const (
	DefaultMaxDocumentSize = "16MB"
)

// Server defaults.
const (
	DefaultServerHost         = "127.0.0.1"
	DefaultServerPort         = 8080
	DefaultServerReadTimeout  = 30 * time.Second
	DefaultServerWriteTimeout = 30 * time.Second
	DefaultServerIdleTimeout  = 60 * time.Second
	DefaultServerMaxBodySize  = "32MB"
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Telemetry defaults.
const (
	DefaultTelemetryEndpoint   = ""
	DefaultTelemetryInsecure   = false
	DefaultTelemetrySample     = 0.0
	DefaultTelemetryPrometheus = true
)
