package system

import "runtime/debug"

// Version is set by the build process
var Version string

// GetVersion returns the build-stamped version, falling back to the vcs
// revision recorded in the binary.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	version := "<unknown>"
	info, ok := debug.ReadBuildInfo()
	if ok {
		for _, kv := range info.Settings {
			if kv.Value == "" {
				continue
			}
			switch kv.Key {
			case "vcs.revision":
				version = kv.Value
			}
		}
	}
	return version
}
