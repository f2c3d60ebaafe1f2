package config

import "flag"

// Flags are the configuration overrides shared by every projtool command.
type Flags struct {
	config   *string
	debug    *bool
	logFile  *string
	jsonLogs *bool
	listen   *string
}

// RegisterFlags adds the shared flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:   fs.String("config", "", "Path to config file"),
		debug:    fs.Bool("debug", false, "Enable debug logging"),
		logFile:  fs.String("log-file", "", "Also write logs to this file"),
		jsonLogs: fs.Bool("json-logs", false, "Emit logs as JSON"),
		listen:   fs.String("listen", "", "Bridge listen address"),
	}
}

func (f *Flags) path() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.jsonLogs {
		cfg.Logging.JSON = true
	}
	if *f.listen != "" {
		cfg.Bridge.Listen = *f.listen
	}
}
