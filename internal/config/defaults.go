package config

const (
	defaultConfigPath             = "~/.config/encoderkit/config.toml"
	defaultBinaryName             = "ffmpeg"
	defaultCacheDir               = ".ffmpeg"
	defaultStateDir               = "~/.local/share/encoderkit"
	defaultLogDir                 = "~/.local/share/encoderkit/logs"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultProbeTimeoutSeconds    = 10
	defaultDownloadTimeoutSeconds = 600
	defaultRetryCooldownSeconds   = 300
	defaultS3Region               = "eu-central-1"

	defaultWindowsSource = "https://www.gyan.dev/ffmpeg/builds/ffmpeg-release-essentials.zip"
	defaultPosixSource   = "https://remotion-ffmpeg-binaries.s3.eu-central-1.amazonaws.com/ffmpeg-macos-arm64"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Encoder: Encoder{
			BinaryName:             defaultBinaryName,
			CacheDir:               defaultCacheDir,
			ProbeTimeoutSeconds:    defaultProbeTimeoutSeconds,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
			RetryCooldownSeconds:   defaultRetryCooldownSeconds,
			Sources: map[string]string{
				"windows":      defaultWindowsSource,
				"darwin-arm64": defaultPosixSource,
				"posix":        defaultPosixSource,
			},
			Checksums: map[string]string{},
		},
		S3: S3{
			Region: defaultS3Region,
			UseSSL: true,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
