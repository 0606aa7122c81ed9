package main

import "runtime/debug"

var version = buildVersion()

// buildVersion prefers the module version stamped by go install and falls
// back to the short VCS revision of a local build.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	revision := settings["vcs.revision"]
	if revision == "" {
		return "dev"
	}
	revision = revision[:min(len(revision), 7)]

	if settings["vcs.modified"] == "true" {
		return revision + "-dirty"
	}
	return revision
}
