package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `mapstructure:"enabled"          toml:"enabled"`
	UseConsoleWriter bool `mapstructure:"useconsolewriter" toml:"useConsoleWriter"`
}

// RollingFile is the rotation policy of one log file.
type RollingFile struct {
	Name       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// LogFile implements a file based logger.
type LogFile struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Path    string `mapstructure:"path"    toml:"path"`

	AccessLog        string `mapstructure:"access"           toml:"access"`
	AccessMaxSize    int    `mapstructure:"accessmaxsize"    toml:"accessMaxSize"`
	AccessMaxBackups int    `mapstructure:"accessmaxbackups" toml:"accessMaxBackups"`
	AccessMaxAge     int    `mapstructure:"accessmaxage"     toml:"accessMaxAge"`

	ErrorLog        string `mapstructure:"error"           toml:"error"`
	ErrorMaxSize    int    `mapstructure:"errormaxsize"    toml:"errorMaxSize"`
	ErrorMaxBackups int    `mapstructure:"errormaxbackups" toml:"errorMaxBackups"`
	ErrorMaxAge     int    `mapstructure:"errormaxage"     toml:"errorMaxAge"`

	InfoLog        string `mapstructure:"info"           toml:"info"`
	InfoMaxSize    int    `mapstructure:"infomaxsize"    toml:"infoMaxSize"`
	InfoMaxBackups int    `mapstructure:"infomaxbackups" toml:"infoMaxBackups"`
	InfoMaxAge     int    `mapstructure:"infomaxage"     toml:"infoMaxAge"`

	TraceLog        string `mapstructure:"trace"           toml:"trace"`
	TraceMaxSize    int    `mapstructure:"tracemaxsize"    toml:"traceMaxSize"`
	TraceMaxBackups int    `mapstructure:"tracemaxbackups" toml:"traceMaxBackups"`
	TraceMaxAge     int    `mapstructure:"tracemaxage"     toml:"traceMaxAge"`

	WarnLog        string `mapstructure:"warn"           toml:"warn"`
	WarnMaxSize    int    `mapstructure:"warnmaxsize"    toml:"warnMaxSize"`
	WarnMaxBackups int    `mapstructure:"warnmaxbackups" toml:"warnMaxBackups"`
	WarnMaxAge     int    `mapstructure:"warnmaxage"     toml:"warnMaxAge"`
}

// Access returns the rotation policy of the HTTP access log.
func (f *LogFile) Access() RollingFile {
	return RollingFile{f.AccessLog, f.AccessMaxSize, f.AccessMaxBackups, f.AccessMaxAge}
}

// Error returns the rotation policy of the error log.
func (f *LogFile) Error() RollingFile {
	return RollingFile{f.ErrorLog, f.ErrorMaxSize, f.ErrorMaxBackups, f.ErrorMaxAge}
}

// Info returns the rotation policy of the info log.
func (f *LogFile) Info() RollingFile {
	return RollingFile{f.InfoLog, f.InfoMaxSize, f.InfoMaxBackups, f.InfoMaxAge}
}

// Trace returns the rotation policy of the trace log.
func (f *LogFile) Trace() RollingFile {
	return RollingFile{f.TraceLog, f.TraceMaxSize, f.TraceMaxBackups, f.TraceMaxAge}
}

// Warn returns the rotation policy of the warn log.
func (f *LogFile) Warn() RollingFile {
	return RollingFile{f.WarnLog, f.WarnMaxSize, f.WarnMaxBackups, f.WarnMaxAge}
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.
	LogEnv   string

	// EnableAccessLogToConsole writes the HTTP access log to stdout as well.
	// Does not overrule Console.Enabled.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive calls

	AppName     string
	ServiceName string

	// Console used mainly for docker and dev.
	Console Console

	// File enables rolling log files split by level.
	File LogFile `mapstructure:"file" toml:"file"`
}
