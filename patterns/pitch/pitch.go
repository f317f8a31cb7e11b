package pitch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ContentKind is the medium a pitch was delivered in.
type ContentKind string

const (
	KindText  ContentKind = "text"
	KindAudio ContentKind = "audio"
	KindVideo ContentKind = "video"
)

// Spoken reports whether the pitch was delivered out loud.
func (k ContentKind) Spoken() bool {
	return k == KindAudio || k == KindVideo
}

// ParseKind accepts "text", "audio" or "video" in any case. Empty is text.
func ParseKind(s string) (ContentKind, error) {
	switch k := ContentKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindText, nil
	case KindText, KindAudio, KindVideo:
		return k, nil
	default:
		return "", fmt.Errorf("pitch: unknown content kind %q", s)
	}
}

// Pitch is the input of an analysis.
type Pitch struct {
	ID            string      `json:"id,omitempty" yaml:"id"`
	Title         string      `json:"title" yaml:"title"`
	Description   string      `json:"description" yaml:"description"`
	Industry      string      `json:"industry" yaml:"industry"`
	TargetMarket  string      `json:"targetMarket" yaml:"targetMarket"`
	BusinessModel string      `json:"businessModel" yaml:"businessModel"`
	FundingAmount string      `json:"fundingAmount" yaml:"fundingAmount"`
	Kind          ContentKind `json:"pitchType" yaml:"pitchType"`
	Content       string      `json:"pitch" yaml:"pitch"`
	LanguageCode  string      `json:"languageCode,omitempty" yaml:"languageCode"`
}

// ErrUnsupportedMedia is returned for uploads with an unknown extension.
var ErrUnsupportedMedia = errors.New("pitch: unsupported media file")

var mediaKinds = map[string]ContentKind{
	".mp3":  KindAudio,
	".wav":  KindAudio,
	".mp4":  KindVideo,
	".avi":  KindVideo,
	".mov":  KindVideo,
	".mkv":  KindVideo,
	".webm": KindVideo,
	".flv":  KindVideo,
	".wmv":  KindVideo,
}

// MediaKind classifies an upload by its extension.
func MediaKind(fileName string) (ContentKind, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	kind, ok := mediaKinds[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (allowed: .mp3 .wav .mp4 .avi .mov .mkv .webm .flv .wmv)", ErrUnsupportedMedia, fileName)
	}
	return kind, nil
}
