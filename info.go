package odbc

import (
	"fmt"
	"runtime"
)

// ManagerInfo describes the state of the platform driver manager binding.
type ManagerInfo struct {
	Available    bool   // Whether the driver manager library was loaded
	Platform     string // Current platform (darwin, linux, windows)
	Architecture string // Current architecture (arm64, amd64, etc.)
	Path         string // Path or name of the loaded library, if available
	Error        string // Error message if loading failed
}

// DriverManagerInfo returns detailed information about the driver manager
// binding. Calling it triggers the load if it has not happened yet.
func DriverManagerInfo() ManagerInfo {
	loadDriverManager()

	info := ManagerInfo{
		Available:    managerLoaded,
		Platform:     runtime.GOOS,
		Architecture: runtime.GOARCH,
		Path:         managerPath,
	}

	if managerError != nil {
		info.Error = managerError.Error()
	}

	return info
}

// String returns a human-readable summary of the binding status
func (i ManagerInfo) String() string {
	if i.Available {
		return fmt.Sprintf("Driver manager: Available\nPlatform: %s/%s\nLibrary: %s",
			i.Platform, i.Architecture, i.Path)
	}

	return fmt.Sprintf("Driver manager: Not available\nPlatform: %s/%s\nError: %s",
		i.Platform, i.Architecture, i.Error)
}
