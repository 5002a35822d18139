// Package version provides the build version of the interviewforge server.
package version

import "fmt"

// Version is the semver of the current build.
var Version = "0.1.0"

// DevVersion is the suffix used for development builds.
var DevVersion = "dev"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return fmt.Sprintf("%s-%s", Version, DevVersion)
	}
	return Version
}
