// Package ffmpeg builds ffmpeg command lines for the video converter and
// turns ffmpeg's machine-readable progress output into progress updates.
//
// Progress observers never block the encoder: updates are handed to a
// buffered dispatcher that drops events when the observer falls behind.
package ffmpeg
