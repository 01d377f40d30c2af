package config

const (
	defaultConfigPath   = "~/.config/cinelog/config.toml"
	defaultDataDir      = "~/.local/share/cinelog"
	defaultLogDir       = "~/.local/share/cinelog/logs"
	defaultBackend      = BackendBadger
	defaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	defaultTMDBLanguage = "ko-KR"
	defaultAPIBind      = "127.0.0.1:7488"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Store backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Store: Store{
			Backend:    defaultBackend,
			SyncWrites: true,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
