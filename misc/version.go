// Package misc holds build time program identification.
package misc

// Set by the linker: -X pdfepub/misc.version=... -X pdfepub/misc.gitHash=...
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "pdfepub"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
