package settings

import (
	"fmt"
	"slices"

	apperrors "github.com/lupppig/sitectl/internal/errors"
	"golang.org/x/text/encoding/htmlindex"
)

// Overlay derives the next Settings from s. Implementations must not mutate
// s; clone before touching slices or maps.
type Overlay func(s Settings, local Local) (Settings, error)

// Package is a named bundle of overrides selected through ConfigPackage.
type Package struct {
	Name    string
	Overlay Overlay
}

// Packages returns the known packages in the order they are applied.
func Packages() []Package {
	return []Package{
		{Name: "rpi", Overlay: rpiOverlay},
		{Name: "nalanda", Overlay: nalandaOverlay},
		{Name: "userrestricted", Overlay: userRestrictedOverlay},
		{Name: "demo", Overlay: demoOverlay},
	}
}

var demoMiddleware = []string{
	"sitectl.distributed.demo_middleware.StopAdminAccess",
	"sitectl.distributed.demo_middleware.LinkUserManual",
	"sitectl.distributed.demo_middleware.ShowAdminLogin",
}

// rpiOverlay tunes a Raspberry Pi server: nginx proxies on 8008 in front of
// the production server on 7007, and password hashing is cheaper.
func rpiOverlay(s Settings, local Local) (Settings, error) {
	s = s.clone()
	s.ProductionPort = pick(local.ProductionPort, 7007)
	s.ProxyPort = pick(local.ProxyPort, 8008)
	if s.ProductionPort == s.ProxyPort {
		return Settings{}, apperrors.New(apperrors.TypeConfig,
			fmt.Sprintf("production_port and proxy_port must not be the same (both %d)", s.ProductionPort),
			"Change one of the ports in your settings file.")
	}

	s.PasswordIterationsTeacher = pick(local.PasswordIterationsTeacher, 2000)
	s.PasswordIterationsStudent = pick(local.PasswordIterationsStudent, 500)
	s.EnableClockSet = pick(local.EnableClockSet, true)
	s.DoNotReloadContentCacheAtStartup = true
	return s, nil
}

func nalandaOverlay(s Settings, _ Local) (Settings, error) {
	s = s.clone()
	s.TurnOffMotivationalFeatures = true
	s.RestrictedTeacherPermissions = true
	s.FixedBlockExercises = 5
	s.QuizRepeats = 3
	return s, nil
}

func userRestrictedOverlay(s Settings, local Local) (Settings, error) {
	s = s.clone()
	// Restricted pages must not share cache keys with unrestricted ones.
	if s.CacheTime != 0 && local.KeyPrefix == nil {
		s.KeyPrefix += "|restricted"
	}
	s.DisableSelfAdmin = true
	return s, nil
}

func demoOverlay(s Settings, local Local) (Settings, error) {
	s = s.clone()
	s.CentralServerHost = pick(local.CentralServerHost, "staging.learningequality.org")
	s.SecuresyncProtocol = pick(local.SecuresyncProtocol, "http")
	s.CentralServerURL = fmt.Sprintf("%s://%s", s.SecuresyncProtocol, s.CentralServerHost)
	s.DemoAdminUsername = pick(local.DemoAdminUsername, "admin")
	s.DemoAdminPassword = pick(local.DemoAdminPassword, "pass")
	s.MiddlewareClasses = append(s.MiddlewareClasses, demoMiddleware...)
	return s, nil
}

// encodingOverlay canonicalizes DefaultEncoding, rejecting names the
// encoding index does not know.
func encodingOverlay(s Settings, _ Local) (Settings, error) {
	enc, err := s.Encoding()
	if err != nil {
		return Settings{}, apperrors.Wrap(err, apperrors.TypeConfig, "invalid default_encoding",
			"Use a WHATWG encoding label such as utf-8 or windows-1252.")
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return Settings{}, apperrors.Wrap(err, apperrors.TypeConfig, "invalid default_encoding", "")
	}
	s = s.clone()
	s.DefaultEncoding = name
	return s, nil
}

// screenshotsOverlay swaps every database for a throwaway in-memory one
// while the screenshots command runs.
func screenshotsOverlay(s Settings, env Environment) Settings {
	if !slices.Contains(env.Args, "screenshots") {
		return s
	}
	s = s.clone()
	s.Databases = map[string]Database{
		s.Screenshots.Router: {Engine: SQLiteEngine, Name: InMemoryDB},
		"assessment_items":   {Engine: SQLiteEngine, Name: InMemoryDB},
	}
	return s
}
