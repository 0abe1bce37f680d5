// Package env holds build time information, set through -ldflags.
package env

const AppName = "gptscan"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)
