package ffmpeg

import (
	"strconv"
	"strings"
)

// Preamble is prepended to every invocation. Progress goes to stdout as
// key=value lines; errors go to stderr.
var Preamble = []string{"-hide_banner", "-nostdin", "-y", "-loglevel", "error", "-progress", "pipe:1", "-nostats"}

// TranscodeOptions selects the encoder settings for a full re-encode.
type TranscodeOptions struct {
	Codec          string
	Preset         string
	CRF            int
	X265Params     string
	PixelFormat    string
	CopyAudioCodec string
	AudioCodec     string
	AudioBitrate   string
	// SourceAudioCodec is the probed codec of the first audio stream; empty
	// when the source has no audio.
	SourceAudioCodec string
}

// TranscodeArgs returns the arguments for re-encoding src into dst with the
// default stream mapping (first video stream, first audio stream).
func TranscodeArgs(src, dst string, opts TranscodeOptions) []string {
	args := append([]string{}, Preamble...)
	args = append(args, "-i", src, "-c:v", opts.Codec)
	if opts.Preset != "" {
		args = append(args, "-preset", opts.Preset)
	}
	if opts.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(opts.CRF))
	}
	if opts.X265Params != "" {
		args = append(args, "-x265-params", opts.X265Params)
	}
	if opts.PixelFormat != "" {
		args = append(args, "-pix_fmt", opts.PixelFormat)
	}
	args = append(args, audioArgs(opts)...)
	return append(args, dst)
}

func audioArgs(opts TranscodeOptions) []string {
	source := strings.ToLower(strings.TrimSpace(opts.SourceAudioCodec))
	if source == "" {
		return nil
	}
	if opts.CopyAudioCodec != "" && source == strings.ToLower(opts.CopyAudioCodec) {
		return []string{"-c:a", "copy"}
	}
	args := []string{"-c:a", opts.AudioCodec}
	if opts.AudioBitrate != "" {
		args = append(args, "-b:a", opts.AudioBitrate)
	}
	return args
}

// RemuxArgs copies every stream of src into dst without re-encoding.
func RemuxArgs(src, dst string) []string {
	args := append([]string{}, Preamble...)
	return append(args, "-i", src, "-map", "0", "-c", "copy", dst)
}

// CommandString renders an invocation for debug logs.
func CommandString(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, binary)
	for _, arg := range args {
		if strings.ContainsAny(arg, " \t'\"") {
			arg = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}
