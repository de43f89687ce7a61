// internal/version/version.go
package version

// Version is the released toolkit version, overridable at build time
// with -ldflags "-X hybgo/internal/version.Version=...".
var Version = "0.1.0"
