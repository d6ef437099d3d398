package settings

import (
	"fmt"
	"slices"
	"strings"
)

// ResolvePackages decides which packages are active. An explicit local list
// wins, even when empty; otherwise a Raspberry Pi host selects rpi.
func ResolvePackages(local Local, env Environment) []string {
	var names []string
	switch {
	case local.ConfigPackage != nil:
		names = *local.ConfigPackage
	case env.IsRaspberryPi():
		names = []string{"RPi"}
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || n == "none" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Compose builds the final Settings. It returns the names of the packages
// whose overlays ran, in application order.
func Compose(local Local, env Environment) (Settings, []string, error) {
	s := Base(local, env)
	s.ConfigPackage = ResolvePackages(local, env)

	var applied []string
	for _, p := range Packages() {
		if !s.PackageSelected(p.Name) {
			continue
		}
		next, err := p.Overlay(s, local)
		if err != nil {
			return Settings{}, nil, fmt.Errorf("%s package: %w", p.Name, err)
		}
		s = next
		applied = append(applied, p.Name)
	}

	s, err := encodingOverlay(s, local)
	if err != nil {
		return Settings{}, nil, err
	}

	return screenshotsOverlay(s, env), applied, nil
}

// UnknownPackages returns selected names that match no known package.
func UnknownPackages(s Settings) []string {
	var unknown []string
	for _, name := range s.ConfigPackage {
		if !slices.ContainsFunc(Packages(), func(p Package) bool { return p.Name == name }) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

