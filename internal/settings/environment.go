package settings

import (
	"os"
	"runtime"
)

// Environment is what package auto-detection and argument-sensitive
// overlays are allowed to look at.
type Environment struct {
	OS      string
	Machine string
	Home    string
	Args    []string
}

// DetectEnvironment inspects the running host.
func DetectEnvironment(args []string) Environment {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return Environment{
		OS:      runtime.GOOS,
		Machine: machine(),
		Home:    home,
		Args:    args,
	}
}

// IsRaspberryPi matches the first-generation boards the rpi package targets.
func (e Environment) IsRaspberryPi() bool {
	return e.OS == "linux" && e.Machine == "armv6l"
}
