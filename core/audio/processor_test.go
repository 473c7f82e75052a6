package audio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DJCodeOne/freshwax-sub002/model"
)

func TestPreviewWindow(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		start    float64
		clipLen  float64
	}{
		{"long track starts at 30", 240, 30, 60},
		{"exactly 90 still starts at 30", 90, 30, 60},
		{"just under 90 starts at 0", 89.5, 0, 60},
		{"short track clips to its length", 45, 0, 45},
		{"very short track", 10, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, clipLen := PreviewWindow(tt.duration)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.clipLen, clipLen)
			assert.LessOrEqual(t, clipLen, 60.0)
		})
	}
}

func TestMP3Args(t *testing.T) {
	args := strings.Join(mp3Args("in.flac", "out.mp3"), " ")
	assert.Contains(t, args, "-c:a libmp3lame")
	assert.Contains(t, args, "-b:a 320k")
	assert.Contains(t, args, "-ar 44100")
}

func TestWAVArgsIsPCM16(t *testing.T) {
	args := strings.Join(wavArgs("in.mp3", "out.wav"), " ")
	assert.Contains(t, args, "-c:a pcm_s16le")
	assert.Contains(t, args, "-ar 44100")
}

func TestPreviewArgsFade(t *testing.T) {
	args := strings.Join(previewArgs("full.mp3", "preview.mp3", 30, 60), " ")
	assert.Contains(t, args, "-ss 30")
	assert.Contains(t, args, "-t 60")
	// Fade covers the last 5 seconds of the clip.
	assert.Contains(t, args, "afade=t=out:st=55:d=5")
	assert.Contains(t, args, "-b:a 192k")

	short := strings.Join(previewArgs("full.mp3", "preview.mp3", 0, 4), " ")
	assert.Contains(t, short, "afade=t=out:st=0:d=5")
}

func TestArtifactKeys(t *testing.T) {
	meta := model.TrackMetadata{TrackNumber: 3, Title: "Midnight Groove"}

	assert.Equal(t, "releases/rel-1/tracks/03-midnight-groove.mp3", TrackKey("rel-1", meta, ".mp3"))
	assert.Equal(t, "releases/rel-1/tracks/03-midnight-groove.wav", TrackKey("rel-1", meta, ".wav"))
	assert.Equal(t, "releases/rel-1/previews/03-preview.mp3", PreviewKey("rel-1", meta))
}

func TestEngineCloseWithoutUse(t *testing.T) {
	eng := NewEngine("ffmpeg")
	assert.False(t, eng.Closed())
	assert.NoError(t, eng.Close())
	assert.True(t, eng.Closed())
	// Idempotent.
	assert.NoError(t, eng.Close())
	// A closed engine refuses work.
	_, err := eng.WorkDir()
	assert.ErrorIs(t, err, ErrEngineClosed)
}
