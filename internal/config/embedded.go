package config

// EmbeddedTMDBKey is a catalog API key injected at build time via ldflags.
// It is only a default; environment variables and the config file override it.
//
// Build with:
//
//	go build -ldflags "-X 'github.com/bingebuddy/bingebuddy/internal/config.EmbeddedTMDBKey=xxx'" ./cmd/bingebuddy
var EmbeddedTMDBKey string
