// Package utils holds small helpers shared across chatwidget packages.
package utils

import "runtime/debug"

// Build metadata. Release builds stamp these with
// -ldflags "-X github.com/papercomputeco/chatwidget/pkg/utils.Version=...".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// BuildVersion returns Version, or the module version recorded by the go
// tool when the binary was built with go install and never stamped.
func BuildVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return Version
}
