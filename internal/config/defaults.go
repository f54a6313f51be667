package config

const (
	defaultConfigPath        = "~/.config/esdemedia/config.toml"
	defaultInputDir          = "/Volumes/data/retroid_sd/roms"
	defaultOutputDir         = "/Volumes/data/esde_media"
	defaultLogDir            = "~/.local/share/esdemedia/logs"
	defaultLogRetentionDays  = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultVideoTarget       = ".mkv"
	defaultVideoCodec        = "libx265"
	defaultVideoPreset       = "slow"
	defaultVideoCRF          = 23
	defaultX265Params        = "profile=main10"
	defaultPixelFormat       = "yuv420p10le"
	defaultCopyAudioCodec    = "aac"
	defaultAudioCodec        = "aac"
	defaultAudioBitrate      = "160k"
	defaultVideoTimeoutMin   = 120
	defaultImageQuality      = 80
	defaultImageTimeoutSec   = 120
	defaultPDFOptimizeLevel  = 3
	defaultPDFJPEGQuality    = 75
	defaultPDFTimeoutSeconds = 1800
)

func defaultSourceExtensions() []string {
	return []string{".mp4"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Video: Video{
			SourceExtensions: defaultSourceExtensions(),
			TargetExtension:  defaultVideoTarget,
			Codec:            defaultVideoCodec,
			Preset:           defaultVideoPreset,
			CRF:              defaultVideoCRF,
			X265Params:       defaultX265Params,
			PixelFormat:      defaultPixelFormat,
			CopyAudioCodec:   defaultCopyAudioCodec,
			AudioCodec:       defaultAudioCodec,
			AudioBitrate:     defaultAudioBitrate,
			TimeoutMinutes:   defaultVideoTimeoutMin,
		},
		Image: Image{
			Quality:        defaultImageQuality,
			TimeoutSeconds: defaultImageTimeoutSec,
		},
		PDF: PDF{
			OptimizeLevel:  defaultPDFOptimizeLevel,
			JPEGQuality:    defaultPDFJPEGQuality,
			JBIG2Lossy:     true,
			TimeoutSeconds: defaultPDFTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
