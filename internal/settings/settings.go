// Package settings assembles the platform configuration once at startup.
//
// A composition starts from Base, which is the platform defaults with the
// operator's Local overrides applied. Each selected package then contributes
// an Overlay, a pure function from one Settings value to the next. Nothing in
// this package holds process-wide state.
package settings

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	Version      = "0.14.0"
	ShortVersion = "0.14"

	DefaultDatabase = "default"
	SQLiteEngine    = "sqlite"
	InMemoryDB      = ":memory:"
)

// Database is a configured database connection, keyed by alias in Settings.Databases.
type Database struct {
	Engine   string `json:"engine" yaml:"engine" mapstructure:"engine"`
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty" mapstructure:"host"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`
	User     string `json:"user,omitempty" yaml:"user,omitempty" mapstructure:"user"`
	Password string `json:"-" yaml:"-" mapstructure:"password"`

	SSLMode     string `json:"sslmode,omitempty" yaml:"sslmode,omitempty" mapstructure:"sslmode"`
	SSLRootCert string `json:"sslrootcert,omitempty" yaml:"sslrootcert,omitempty" mapstructure:"sslrootcert"`
}

type Screenshots struct {
	OutputPath string `json:"output_path" yaml:"output_path"`
	Extension  string `json:"extension" yaml:"extension"`
	JSONPath   string `json:"json_path" yaml:"json_path"`
	JSONFile   string `json:"json_file" yaml:"json_file"`
	Router     string `json:"router" yaml:"router"`
}

type Settings struct {
	UserDataRoot  string   `json:"user_data_root" yaml:"user_data_root"`
	BackupDirPath string   `json:"backup_dirpath" yaml:"backup_dirpath"`
	ConfigPackage []string `json:"config_package" yaml:"config_package"`

	ProductionPort int `json:"production_port" yaml:"production_port"`
	ProxyPort      int `json:"proxy_port,omitempty" yaml:"proxy_port,omitempty"`
	CherrypyPort   int `json:"cherrypy_port" yaml:"cherrypy_port"`

	PasswordIterationsTeacher int  `json:"password_iterations_teacher" yaml:"password_iterations_teacher"`
	PasswordIterationsStudent int  `json:"password_iterations_student" yaml:"password_iterations_student"`
	EnableClockSet            bool `json:"enable_clock_set" yaml:"enable_clock_set"`

	DoNotReloadContentCacheAtStartup bool `json:"do_not_reload_content_cache_at_startup" yaml:"do_not_reload_content_cache_at_startup"`

	TurnOffMotivationalFeatures  bool `json:"turn_off_motivational_features" yaml:"turn_off_motivational_features"`
	RestrictedTeacherPermissions bool `json:"restricted_teacher_permissions" yaml:"restricted_teacher_permissions"`
	FixedBlockExercises          int  `json:"fixed_block_exercises" yaml:"fixed_block_exercises"`
	QuizRepeats                  int  `json:"quiz_repeats" yaml:"quiz_repeats"`

	UnitPoints            int    `json:"unit_points" yaml:"unit_points"`
	AssessmentItemsZipURL string `json:"assessment_items_zip_url" yaml:"assessment_items_zip_url"`

	CacheTime        int    `json:"cache_time" yaml:"cache_time"`
	KeyPrefix        string `json:"key_prefix" yaml:"key_prefix"`
	DisableSelfAdmin bool   `json:"disable_self_admin" yaml:"disable_self_admin"`

	CentralServerHost  string `json:"central_server_host" yaml:"central_server_host"`
	SecuresyncProtocol string `json:"securesync_protocol" yaml:"securesync_protocol"`
	CentralServerURL   string `json:"central_server_url" yaml:"central_server_url"`
	DemoAdminUsername  string `json:"demo_admin_username,omitempty" yaml:"demo_admin_username,omitempty"`
	DemoAdminPassword  string `json:"-" yaml:"-"`

	MiddlewareClasses []string `json:"middleware_classes" yaml:"middleware_classes"`
	DefaultEncoding   string   `json:"default_encoding" yaml:"default_encoding"`

	Screenshots Screenshots         `json:"screenshots" yaml:"screenshots"`
	Databases   map[string]Database `json:"databases" yaml:"databases"`
}

// PackageSelected reports whether the named package is part of the
// composition. Names compare case-insensitively.
func (s Settings) PackageSelected(name string) bool {
	if len(s.ConfigPackage) == 0 || name == "" {
		return false
	}
	return slices.Contains(s.ConfigPackage, strings.ToLower(name))
}

// Database returns the database configured under alias.
func (s Settings) Database(alias string) (Database, bool) {
	d, ok := s.Databases[alias]
	return d, ok
}

// Encoding returns the console encoding named by DefaultEncoding.
func (s Settings) Encoding() (encoding.Encoding, error) {
	enc, err := htmlindex.Get(s.DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", s.DefaultEncoding, err)
	}
	return enc, nil
}

func (s Settings) clone() Settings {
	s.ConfigPackage = slices.Clone(s.ConfigPackage)
	s.MiddlewareClasses = slices.Clone(s.MiddlewareClasses)
	s.Databases = maps.Clone(s.Databases)
	return s
}

var baseMiddleware = []string{
	"django.middleware.common.CommonMiddleware",
	"django.contrib.sessions.middleware.SessionMiddleware",
	"django.middleware.locale.LocaleMiddleware",
	"django.contrib.auth.middleware.AuthenticationMiddleware",
	"django.contrib.messages.middleware.MessageMiddleware",
	"django.middleware.csrf.CsrfViewMiddleware",
}

// Base returns the platform defaults with every non-package local override
// applied. It does not resolve or apply packages.
func Base(local Local, env Environment) Settings {
	root := pick(local.UserDataRoot, filepath.Join(env.Home, ".sitectl"))

	s := Settings{
		UserDataRoot:  root,
		BackupDirPath: pick(local.BackupDirPath, filepath.Join(root, "backups")),

		ProductionPort: pick(local.ProductionPort, 8008),
		ProxyPort:      pick(local.ProxyPort, 0),

		PasswordIterationsTeacher: pick(local.PasswordIterationsTeacher, 5000),
		PasswordIterationsStudent: pick(local.PasswordIterationsStudent, 2500),
		EnableClockSet:            pick(local.EnableClockSet, false),

		UnitPoints:            2000,
		AssessmentItemsZipURL: fmt.Sprintf("https://learningequality.org/downloads/ka-lite/%s/content/assessment.zip", ShortVersion),

		CacheTime: pick(local.CacheTime, 600),
		KeyPrefix: pick(local.KeyPrefix, Version),

		CentralServerHost:  pick(local.CentralServerHost, "globe.learningequality.org"),
		SecuresyncProtocol: pick(local.SecuresyncProtocol, "https"),

		MiddlewareClasses: slices.Clone(baseMiddleware),
		DefaultEncoding:   pick(local.DefaultEncoding, "utf-8"),

		Screenshots: Screenshots{
			OutputPath: filepath.Join(root, "data", "screenshots"),
			Extension:  ".png",
			JSONPath:   filepath.Join(root, "data"),
			JSONFile:   filepath.Join(root, "data", "screenshots.json"),
			Router:     DefaultDatabase,
		},
		Databases: map[string]Database{
			DefaultDatabase: {
				Engine: SQLiteEngine,
				Name:   filepath.Join(root, "database", "data.sqlite"),
			},
		},
	}

	// CHERRYPY_PORT follows the production port as it stood before any
	// package overlay ran.
	s.CherrypyPort = pick(local.CherrypyPort, s.ProductionPort)
	s.CentralServerURL = fmt.Sprintf("%s://%s", s.SecuresyncProtocol, s.CentralServerHost)

	for alias, db := range local.Databases {
		s.Databases[alias] = db
	}

	return s
}

func pick[T any](v *T, def T) T {
	if v != nil {
		return *v
	}
	return def
}
