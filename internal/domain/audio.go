// Package domain holds the core types shared by the capture client and the server.
package domain

import "time"

// AudioClip is one finished recording or selected file, handed off as a single payload.
type AudioClip struct {
	Name     string
	MimeType string
	Data     []byte
	Duration time.Duration
}

// Empty reports whether the clip carries no audio bytes.
func (c AudioClip) Empty() bool {
	return len(c.Data) == 0
}

// FileName returns a multipart-friendly name for the clip.
func (c AudioClip) FileName() string {
	if c.Name != "" {
		return c.Name
	}
	switch c.MimeType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "recording.wav"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "recording.m4a"
	case "audio/mpeg":
		return "recording.mp3"
	case "audio/ogg":
		return "recording.ogg"
	default:
		return "recording.webm"
	}
}
