// Package audio derives best-effort metadata from uploaded audio files.
// Probing is tags plus container headers only; anything it cannot determine
// stays nil so the enrichment patch leaves those fields untouched.
package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/tcolgate/mp3"

	"vaultapi/internal/model"
)

var ErrUnsupported = errors.New("unsupported audio container")

// bpmInName matches patterns like "Anthem_140bpm.wav" or "140 BPM mix.mp3".
var bpmInName = regexp.MustCompile(`(?i)(\d{2,3})\s*bpm`)

// Probe reads tags and container headers from r and returns whatever partial
// metadata it could derive. The reader is consumed; callers that need the
// content again must reopen it.
func Probe(fileName string, r io.ReadSeeker) (model.AudioMetadata, error) {
	var meta model.AudioMetadata

	// Tag probe first: genre, BPM and musical key frames when present.
	if m, err := tag.ReadFrom(r); err == nil {
		if g := strings.TrimSpace(m.Genre()); g != "" {
			meta.Genre = &g
		}
		applyRawFrames(m.Raw(), &meta)
	}
	if meta.BPM == nil {
		if b, ok := bpmFromName(fileName); ok {
			meta.BPM = &b
		}
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return meta, fmt.Errorf("rewind for container probe: %w", err)
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".wav":
		if err := probeWAV(r, &meta); err != nil {
			return meta, err
		}
	case ".mp3":
		if err := probeMP3(r, &meta); err != nil {
			return meta, err
		}
	default:
		// Other audio formats keep their tag-derived fields only.
		if meta.Empty() {
			return meta, ErrUnsupported
		}
	}
	return meta, nil
}

func probeWAV(r io.ReadSeeker, meta *model.AudioMetadata) error {
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if !d.IsValidFile() {
		return fmt.Errorf("wav probe: not a valid wav file")
	}
	if d.SampleRate > 0 {
		sr := int(d.SampleRate)
		meta.SampleRate = &sr
	}
	dur, err := d.Duration()
	if err != nil {
		return fmt.Errorf("wav duration: %w", err)
	}
	secs := dur.Seconds()
	meta.Duration = &secs
	return nil
}

func probeMP3(r io.Reader, meta *model.AudioMetadata) error {
	d := mp3.NewDecoder(r)
	var (
		frame   mp3.Frame
		skipped int
		total   float64
		frames  int
	)
	for {
		if err := d.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration().Seconds()
		frames++
	}
	if frames == 0 {
		return fmt.Errorf("mp3 probe: no decodable frames")
	}
	meta.Duration = &total
	return nil
}

// applyRawFrames picks BPM and key out of format-specific tag frames
// (ID3v2 TBPM/TKEY, iTunes tmpo, Vorbis BPM/INITIALKEY).
func applyRawFrames(raw map[string]interface{}, meta *model.AudioMetadata) {
	for name, value := range raw {
		switch strings.ToUpper(name) {
		case "TBPM", "BPM", "TMPO":
			if meta.BPM == nil {
				if b, ok := toInt(value); ok && b > 0 {
					meta.BPM = &b
				}
			}
		case "TKEY", "INITIALKEY", "KEY":
			if meta.Key == nil {
				if k, ok := value.(string); ok && strings.TrimSpace(k) != "" {
					k = strings.TrimSpace(k)
					meta.Key = &k
				}
			}
		}
	}
}

func bpmFromName(fileName string) (int, bool) {
	m := bpmInName.FindStringSubmatch(fileName)
	if m == nil {
		return 0, false
	}
	b, err := strconv.Atoi(m[1])
	if err != nil || b < 40 || b > 300 {
		return 0, false
	}
	return b, true
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint32:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
