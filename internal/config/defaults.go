package config

const (
	defaultConfigPath = "~/.config/dcpkit/config.toml"
	defaultJournalDir = "~/.local/share/dcpkit"
	defaultLogDir     = "~/.local/share/dcpkit/logs"
	defaultOverwrite  = OverwriteSkipIfExists
	defaultFrameRate  = "24/1"
	defaultEncoder    = "opj_compress"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"

	// JournalFileName is the SQLite database created inside the journal directory.
	JournalFileName = "journal.db"

	// EncoderEnv overrides encoder.binary when the config leaves it empty.
	EncoderEnv = "DCPKIT_ENCODER"
)

// Overwrite policy names accepted in conversion.overwrite.
const (
	OverwriteSkipIfExists = "skip-if-exists"
	OverwriteAlways       = "always-overwrite"
)

func defaultEncoderArgs() []string {
	return []string{"-i", "{input}", "-o", "{output}"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			JournalDir: defaultJournalDir,
			LogDir:     defaultLogDir,
		},
		Conversion: Conversion{
			Overwrite:            defaultOverwrite,
			FrameRate:            defaultFrameRate,
			ImageExtensions:      []string{".tif", ".tiff", ".dpx", ".bmp"},
			CodestreamExtensions: []string{".j2c", ".j2k"},
		},
		Encoder: Encoder{
			Args: defaultEncoderArgs(),
		},
		Audio: Audio{
			Extensions: []string{".wav"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
