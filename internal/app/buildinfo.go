package app

import (
	"runtime/debug"
	"strings"
	"time"
)

var (
	// Version is filled by ldflags in release builds.
	Version = ""
	// BuildDate is filled by ldflags in release builds.
	BuildDate = ""
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

const (
	dateLayout     = "2006-01-02"
	shortRevLength = 12
)

// buildMeta is what `go install` and `go build` embed without ldflags.
type buildMeta struct {
	module   string
	revision string
	vcsTime  string
	modified bool
}

func embeddedBuildMeta() buildMeta {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return buildMeta{}
	}

	meta := buildMeta{}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		meta.module = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			meta.revision = s.Value
		case "vcs.time":
			meta.vcsTime = s.Value
		case "vcs.modified":
			meta.modified = s.Value == "true"
		}
	}

	return meta
}

// BuildVersion prefers the ldflags version, then the module version, then
// the VCS revision. Local builds without any of them report "dev".
func BuildVersion() string {
	if v := strings.TrimSpace(Version); v != "" {
		return v
	}

	meta := embeddedBuildMeta()
	switch {
	case meta.module != "":
		return meta.module
	case meta.revision != "":
		rev := meta.revision
		if len(rev) > shortRevLength {
			rev = rev[:shortRevLength]
		}
		if meta.modified {
			rev += "-dirty"
		}

		return "dev-" + rev
	default:
		return "dev"
	}
}

// BuildDateYMD returns the build date as YYYY-MM-DD, falling back to the
// commit time recorded by the Go toolchain.
func BuildDateYMD() string {
	raw := strings.TrimSpace(BuildDate)
	if raw == "" {
		raw = embeddedBuildMeta().vcsTime
	}
	if raw == "" {
		return ""
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC().Format(dateLayout)
	}
	if len(raw) >= len(dateLayout) {
		if _, err := time.Parse(dateLayout, raw[:len(dateLayout)]); err == nil {
			return raw[:len(dateLayout)]
		}
	}

	return raw
}

func BuildVersionWithDate() string {
	version := BuildVersion()
	if date := BuildDateYMD(); date != "" {
		return version + " (" + date + ")"
	}

	return version
}
