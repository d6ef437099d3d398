package settings

// Local holds the operator's overrides. A nil field means "not set", which
// lets package overlays supply their own defaults only where the operator
// stayed silent.
type Local struct {
	UserDataRoot  *string   `mapstructure:"user_data_root"`
	BackupDirPath *string   `mapstructure:"backup_dirpath"`
	ConfigPackage *[]string `mapstructure:"config_package"`

	ProductionPort *int `mapstructure:"production_port"`
	ProxyPort      *int `mapstructure:"proxy_port"`
	CherrypyPort   *int `mapstructure:"cherrypy_port"`

	PasswordIterationsTeacher *int  `mapstructure:"password_iterations_teacher"`
	PasswordIterationsStudent *int  `mapstructure:"password_iterations_student"`
	EnableClockSet            *bool `mapstructure:"enable_clock_set"`

	CacheTime *int    `mapstructure:"cache_time"`
	KeyPrefix *string `mapstructure:"key_prefix"`

	CentralServerHost  *string `mapstructure:"central_server_host"`
	SecuresyncProtocol *string `mapstructure:"securesync_protocol"`
	DemoAdminUsername  *string `mapstructure:"demo_admin_username"`
	DemoAdminPassword  *string `mapstructure:"demo_admin_password"`

	DefaultEncoding *string `mapstructure:"default_encoding"`

	Databases map[string]Database `mapstructure:"databases"`
}

// LocalKeys lists the config keys Local understands, relative to the
// settings section. The config loader binds an environment variable for each.
var LocalKeys = []string{
	"user_data_root",
	"backup_dirpath",
	"config_package",
	"production_port",
	"proxy_port",
	"cherrypy_port",
	"password_iterations_teacher",
	"password_iterations_student",
	"enable_clock_set",
	"cache_time",
	"key_prefix",
	"central_server_host",
	"securesync_protocol",
	"demo_admin_username",
	"demo_admin_password",
	"default_encoding",
}

// Ptr is a small helper for building Local values in code and tests.
func Ptr[T any](v T) *T {
	return &v
}
