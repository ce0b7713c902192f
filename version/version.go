package version

import (
	"fmt"
	"strings"
)

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// buildMetadataCharacters lists the characters allowed in the appBuild
// string. A build string carrying anything else is dropped entirely.
const buildMetadataCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

// appBuild is overridden at build time with
// '-ldflags "-X github.com/tari-project/tari-sub014/version.appBuild=rc1"'.
var appBuild string

// version memoizes the assembled version string.
var version string

// Version returns the application version as major.minor.patch, with the
// build metadata appended when one was provided at build time.
func Version() string {
	if version != "" {
		return version
	}
	version = fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if build := sanitizeBuildMetadata(appBuild); build != "" {
		version += "-" + build
	}
	return version
}

// sanitizeBuildMetadata returns build unchanged, or an empty string if it
// carries any character outside buildMetadataCharacters.
func sanitizeBuildMetadata(build string) string {
	for _, r := range build {
		if !strings.ContainsRune(buildMetadataCharacters, r) {
			return ""
		}
	}
	return build
}
