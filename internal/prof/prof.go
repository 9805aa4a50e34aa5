// Package prof runs Go runtime profilers for the duration of one command.
package prof

import (
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Options names the output files; an empty path disables that profiler.
type Options struct {
	CPU          string
	Mem          string
	RuntimeTrace string
}

// Session is a set of running profilers.
type Session struct {
	fs      afero.Fs
	opts    Options
	cpu     afero.File
	rtTrace afero.File
	stopped bool
}

// Start enables the profilers named in opts. On failure everything already
// started is stopped again.
func Start(fsys afero.Fs, opts Options) (*Session, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	s := &Session{fs: fsys, opts: opts}
	if opts.CPU != "" {
		f, err := fsys.Create(opts.CPU)
		if err != nil {
			return nil, errors.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, errors.Errorf("cpu profile: %w", err)
		}
		s.cpu = f
	}
	if opts.RuntimeTrace != "" {
		f, err := fsys.Create(opts.RuntimeTrace)
		if err == nil {
			err = trace.Start(f)
			if err != nil {
				_ = f.Close()
			}
		}
		if err != nil {
			_ = s.Stop()
			return nil, errors.Errorf("runtime trace: %w", err)
		}
		s.rtTrace = f
	}
	return s, nil
}

// Stop ends the running profilers and writes the heap profile. Calling it
// more than once is a no-op.
func (s *Session) Stop() error {
	if s == nil || s.stopped {
		return nil
	}
	s.stopped = true

	var errs *multierror.Error
	if s.rtTrace != nil {
		trace.Stop()
		errs = multierror.Append(errs, s.rtTrace.Close())
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		errs = multierror.Append(errs, s.cpu.Close())
	}
	if s.opts.Mem != "" {
		errs = multierror.Append(errs, s.writeHeap())
	}
	return errs.ErrorOrNil()
}

func (s *Session) writeHeap() error {
	f, err := s.fs.Create(s.opts.Mem)
	if err != nil {
		return errors.Errorf("heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return errors.Errorf("heap profile: %w", err)
	}
	return f.Close()
}
