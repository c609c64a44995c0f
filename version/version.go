package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
	GoVersion = ""
)

// Info is the build information of the running binary.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	GitBranch string    `json:"git_branch"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// GetVersionInfo combines the ldflags values with the VCS settings the Go
// toolchain embeds. Explicit ldflags values win.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.apply(bi.GoVersion, bi.Settings)
	}
	if info.BuildDate.IsZero() {
		info.BuildDate = time.Now().UTC()
		info.BuildTime = info.BuildDate.Format(time.RFC3339)
	}
	return info
}

// apply fills the fields ldflags left empty from embedded build settings.
func (i *Info) apply(goVersion string, settings []debug.BuildSetting) {
	if i.GoVersion == "" {
		i.GoVersion = goVersion
	}
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.GitCommit == "" {
				i.GitCommit = shortCommit(s.Value)
			}
		case "vcs.modified":
			i.IsDirty = s.Value == "true"
		case "vcs.time":
			if i.BuildTime != "" {
				continue
			}
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				i.BuildDate = t
				i.BuildTime = s.Value
			}
		}
	}
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// Short returns "version-commit", with a "-dirty" suffix for modified trees.
func (i *Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	if i.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", i.Version, i.GitCommit)
	}
	return fmt.Sprintf("%s-%s", i.Version, i.GitCommit)
}

// Full returns the short form plus a non-default branch and the build date.
func (i *Info) Full() string {
	parts := []string{i.Version}
	if i.GitCommit != "" {
		parts = append(parts, i.GitCommit)
	}
	if i.GitBranch != "" && i.GitBranch != "main" && i.GitBranch != "master" {
		parts = append(parts, i.GitBranch)
	}
	if i.IsDirty {
		parts = append(parts, "dirty")
	}
	full := strings.Join(parts, "-")
	if !i.BuildDate.IsZero() {
		full += fmt.Sprintf(" (built %s)", i.BuildDate.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return full
}

// Fields returns the build information as log fields.
func (i *Info) Fields() map[string]interface{} {
	return map[string]interface{}{
		"version":    i.Short(),
		"go_version": i.GoVersion,
		"build_time": i.BuildTime,
		"release":    i.IsRelease,
	}
}

// GetShortVersion returns GetVersionInfo().Short().
func GetShortVersion() string {
	return GetVersionInfo().Short()
}

// GetFullVersion returns GetVersionInfo().Full().
func GetFullVersion() string {
	return GetVersionInfo().Full()
}
