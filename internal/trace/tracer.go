package trace

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Tracer receives events. Emit is called from many goroutines; each
// tracer drops the events its level does not admit.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	// Close flushes first.
	Close() error
	Level() Level
	// Enabled reports Level() > LevelOff.
	Enabled() bool
}

// StorageMode selects where New sends events.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // write as they come
	ModeRing                          // keep the latest in memory
	ModeBoth                          // stream and ring
	ModeLog                           // zerolog debug records
)

var modeNames = [...]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
	ModeLog:    "log",
}

func (m StorageMode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (StorageMode, error) {
	for m, name := range modeNames {
		if name != "" && strings.EqualFold(s, name) {
			return StorageMode(m), nil
		}
	}
	return ModeRing, errors.Errorf("invalid storage mode: %q (expected: stream|ring|both|log)", s)
}

// Config describes the tracer New builds.
type Config struct {
	Level  Level
	Mode   StorageMode
	Format Format // FormatAuto picks by OutputPath extension
	// Output receives stream events; nil means OutputPath.
	Output io.Writer
	// OutputPath is a file, or "-" and "" for stderr.
	OutputPath string
	// Fs opens OutputPath; nil means the OS file system.
	Fs        afero.Fs
	RingSize  int
	Heartbeat time.Duration
	Logger    zerolog.Logger // ModeLog
}

// New builds the tracer described by cfg.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = formatForPath(cfg.OutputPath)
	}

	switch cfg.Mode {
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	case ModeLog:
		return NewLogTracer(cfg.Logger, cfg.Level), nil
	case ModeStream, ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		stream := NewStreamTracer(w, cfg.Level, format)
		if cfg.Mode == ModeStream {
			return stream, nil
		}
		return NewMultiTracer(cfg.Level, stream, NewRingTracer(cfg.RingSize, cfg.Level)), nil
	default:
		return nil, errors.Errorf("unknown storage mode: %v", cfg.Mode)
	}
}

func formatForPath(p string) Format {
	switch {
	case strings.HasSuffix(p, ".ndjson"):
		return FormatNDJSON
	case strings.HasSuffix(p, ".json"):
		return FormatChrome
	default:
		return FormatText
	}
}

// openOutput returns the stream destination. Stderr is wrapped so that
// closing the tracer leaves it open.
func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return struct{ io.Writer }{os.Stderr}, nil
	}
	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	f, err := fsys.Create(cfg.OutputPath)
	if err != nil {
		return nil, errors.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
