// Package cliversion provides build information of the binary.
package cliversion

import (
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-faster/jx"
)

// Info is the build information.
type Info struct {
	// Module is the module path.
	Module string
	// Version is the version of the module.
	Version string
	// GoVersion is the version of the Go that produced this binary.
	GoVersion string

	// Commit is the VCS revision.
	Commit string
	// Modified is true if working tree had local changes.
	Modified bool
	// Time is the time of the commit.
	Time time.Time
}

// GetInfo returns the build information of given module.
//
// Module may be the main module or a dependency. VCS information is reported
// only for the main module.
func GetInfo(modulePath string) (Info, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{}, false
	}
	return infoFrom(modulePath, bi), true
}

func infoFrom(modulePath string, bi *debug.BuildInfo) Info {
	info := Info{
		Module:    modulePath,
		GoVersion: bi.GoVersion,
	}
	if bi.Main.Path != modulePath {
		for _, m := range bi.Deps {
			if m != nil && m.Path == modulePath {
				info.Version = m.Version
				break
			}
		}
		return info
	}

	info.Version = bi.Main.Version
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339Nano, s.Value); err == nil {
				info.Time = t
			}
		}
	}
	return info
}

// String returns human-readable build information.
func (i Info) String() string {
	var s strings.Builder
	s.WriteString("version ")
	switch v := i.Version; v {
	case "", "(devel)":
		s.WriteString("devel")
	default:
		s.WriteString(v)
	}
	if commit := i.Commit; commit != "" {
		s.WriteByte('-')
		s.WriteString(commit)
		if i.Modified {
			s.WriteString("-dirty")
		}
	}

	if t, v := i.Time, i.GoVersion; v != "" || !t.IsZero() {
		s.WriteString(" (built")
		if v != "" {
			s.WriteString(" with ")
			s.WriteString(v)
		}
		if !t.IsZero() {
			s.WriteString(" at ")
			s.WriteString(t.UTC().Format(time.RFC1123))
		}
		s.WriteByte(')')
	}
	s.WriteString(" " + runtime.GOOS + "/" + runtime.GOARCH)
	return s.String()
}

// Encode encodes build information as JSON object.
func (i Info) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("module", func(e *jx.Encoder) { e.Str(i.Module) })
		e.Field("version", func(e *jx.Encoder) { e.Str(i.Version) })
		e.Field("go_version", func(e *jx.Encoder) { e.Str(i.GoVersion) })
		if i.Commit != "" {
			e.Field("commit", func(e *jx.Encoder) { e.Str(i.Commit) })
			e.Field("modified", func(e *jx.Encoder) { e.Bool(i.Modified) })
		}
		if !i.Time.IsZero() {
			e.Field("time", func(e *jx.Encoder) { e.Str(i.Time.UTC().Format(time.RFC3339)) })
		}
		e.Field("platform", func(e *jx.Encoder) { e.Str(runtime.GOOS + "/" + runtime.GOARCH) })
	})
}
