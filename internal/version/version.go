package version

// Version is the client release version, overridable at build time via
// -ldflags "-X github.com/RunjeethNikam/braintrain/internal/version.Version=...".
var Version = "0.1.0"
