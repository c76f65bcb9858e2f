package config

const (
	defaultWorkspace      = "~/.local/share/loom"
	defaultAlignerBinary  = "pyalign"
	defaultAlignerTimeout = 300
	defaultMainDictionary = "/opt/p2fa/model/dict"
	defaultLocalDictName  = "localdict.txt"
	defaultEncoding       = "utf-8"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Workspace: defaultWorkspace,
		},
		Aligner: Aligner{
			Binary:         defaultAlignerBinary,
			Timeout:        defaultAlignerTimeout,
			OutputEncoding: defaultEncoding,
		},
		Dictionary: Dictionary{
			MainPath:  defaultMainDictionary,
			LocalName: defaultLocalDictName,
			Encoding:  defaultEncoding,
			Check:     true,
		},
		Files: Files{
			InputEncoding:  defaultEncoding,
			OutputEncoding: defaultEncoding,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
