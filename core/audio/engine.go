package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/DJCodeOne/freshwax-sub002/logger"
)

// Engine is an explicit handle on the ffmpeg transcoding resource. Startup is
// expensive, so the engine initializes lazily on first use and is reused for
// every track of one invocation. Callers must Close it on every exit path;
// leaking a work directory into a reused execution context is not acceptable.
type Engine struct {
	ffmpegPath string

	mu      sync.Mutex
	workDir string
	ready   bool
	closed  bool
}

// ErrEngineClosed is returned when an engine is used after Close.
var ErrEngineClosed = errors.New("transcoding engine is closed")

// NewEngine creates an engine handle. No resources are acquired until the
// first operation.
func NewEngine(ffmpegPath string) *Engine {
	return &Engine{ffmpegPath: ffmpegPath}
}

// ensure performs the lazy one-time startup: verify the ffmpeg binary and
// create the scratch directory.
func (e *Engine) ensure() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if e.ready {
		return nil
	}

	out, err := exec.Command(e.ffmpegPath, "-version").Output()
	if err != nil {
		return fmt.Errorf("ffmpeg not available at %s: %w", e.ffmpegPath, err)
	}

	dir, err := os.MkdirTemp("", "freshwax-transcode-")
	if err != nil {
		return fmt.Errorf("failed to create transcode work directory: %w", err)
	}

	e.workDir = dir
	e.ready = true

	version := "unknown"
	if lines := strings.SplitN(string(out), "\n", 2); len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}
	logger.Info("Transcoding engine started",
		logger.String("ffmpeg", version),
		logger.String("workDir", dir))
	return nil
}

// WorkDir returns the engine scratch directory, starting the engine if needed.
func (e *Engine) WorkDir() (string, error) {
	if err := e.ensure(); err != nil {
		return "", err
	}
	return e.workDir, nil
}

// Run executes ffmpeg with the given arguments. Stderr is captured and folded
// into the returned error.
func (e *Engine) Run(ctx context.Context, args ...string) error {
	if err := e.ensure(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Executing FFmpeg command",
		logger.String("path", e.ffmpegPath),
		logger.String("args", strings.Join(args, " ")))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg execution failed: %w\nFFmpeg Error: %s", err, stderr.String())
	}
	return nil
}

// Duration uses ffprobe to get the duration of an audio file in seconds.
func (e *Engine) Duration(ctx context.Context, inputFile string) (float64, error) {
	if err := e.ensure(); err != nil {
		return 0, err
	}

	ffprobePath := strings.Replace(e.ffmpegPath, "ffmpeg", "ffprobe", 1)
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		inputFile,
	}

	cmd := exec.CommandContext(ctx, ffprobePath, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe execution failed for %s: %w\nFFprobe Error: %s", inputFile, err, stderr.String())
	}

	var probeData struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out.Bytes(), &probeData); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ffprobe output for %s: %w", inputFile, err)
	}
	if probeData.Format.Duration == "" {
		return 0, fmt.Errorf("duration not found in ffprobe output for %s", inputFile)
	}

	duration, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q for %s: %w", probeData.Format.Duration, inputFile, err)
	}
	return duration, nil
}

// Closed reports whether the engine has been torn down.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close tears the engine down and removes its scratch directory. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if !e.ready {
		return nil
	}
	e.ready = false

	if err := os.RemoveAll(e.workDir); err != nil {
		return fmt.Errorf("failed to remove transcode work directory %s: %w", e.workDir, err)
	}
	logger.Info("Transcoding engine stopped", logger.String("workDir", e.workDir))
	return nil
}
