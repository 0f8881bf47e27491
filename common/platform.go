package common

import "runtime"

// OperatingSystem identifies the host platform the engine was built for.
type OperatingSystem int

const (
	OSUnknown OperatingSystem = iota
	OSWindows
	OSMacOS
	OSLinux
	OSFreeBSD
)

func (o OperatingSystem) String() string {
	switch o {
	case OSWindows:
		return "windows"
	case OSMacOS:
		return "macos"
	case OSLinux:
		return "linux"
	case OSFreeBSD:
		return "freebsd"
	default:
		return "unknown"
	}
}

// DetectOS maps a GOOS value to an OperatingSystem.
//
// Parameters:
//   - goos: a runtime.GOOS style identifier
//
// Returns:
//   - OperatingSystem: the matching platform, or OSUnknown
func DetectOS(goos string) OperatingSystem {
	switch goos {
	case "windows":
		return OSWindows
	case "darwin":
		return OSMacOS
	case "linux":
		return OSLinux
	case "freebsd":
		return OSFreeBSD
	default:
		return OSUnknown
	}
}

// CurrentOS returns the platform this binary was compiled for.
func CurrentOS() OperatingSystem {
	return DetectOS(runtime.GOOS)
}
