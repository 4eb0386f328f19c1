package version

// Version is set at build time with
// -ldflags "-X github.com/max-scopp/ts-flattered/core/version.Version=v1.2.3".
var Version = "dev"
