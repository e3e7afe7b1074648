package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWAV writes a minimal PCM WAV file: 16-bit mono at the given sample
// rate carrying the given number of samples of silence.
func buildWAV(t *testing.T, sampleRate, samples int) []byte {
	t.Helper()
	var buf bytes.Buffer
	dataSize := samples * 2 // 16-bit mono

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))           // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))

	return buf.Bytes()
}

func TestProbe_WAV(t *testing.T) {
	// One second of silence at 44.1kHz.
	data := buildWAV(t, 44100, 44100)

	meta, err := Probe("Song_Idea-2.wav", bytes.NewReader(data))

	require.NoError(t, err)
	require.NotNil(t, meta.SampleRate)
	assert.Equal(t, 44100, *meta.SampleRate)
	require.NotNil(t, meta.Duration)
	assert.InDelta(t, 1.0, *meta.Duration, 0.01)
}

func TestProbe_BPMFromFilename(t *testing.T) {
	data := buildWAV(t, 48000, 4800)

	meta, err := Probe("Anthem_140bpm.wav", bytes.NewReader(data))

	require.NoError(t, err)
	require.NotNil(t, meta.BPM)
	assert.Equal(t, 140, *meta.BPM)
}

func TestProbe_GarbageWAV(t *testing.T) {
	_, err := Probe("broken.wav", bytes.NewReader([]byte("definitely not riff data")))
	assert.Error(t, err)
}

func TestProbe_UnsupportedContainerWithoutTags(t *testing.T) {
	_, err := Probe("pad.ogg", bytes.NewReader(make([]byte, 64)))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestBPMFromName(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"Anthem_140bpm.wav", 140, true},
		{"drill 92 BPM take.mp3", 92, true},
		{"loop.wav", 0, false},
		{"year_2024bpm.wav", 0, false}, // out of plausible range
	}
	for _, tt := range tests {
		got, ok := bpmFromName(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
