package cmd

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/spiffcs/spotlight/internal/log"
)

// Profiler manages CPU, memory, and trace profiling of a run.
type Profiler struct {
	cpuFile   *os.File
	traceFile *os.File

	cpuProfile string
	memProfile string
	tracePath  string
}

// NewProfiler creates a new profiler with the specified profile paths.
// Empty paths disable the corresponding profile.
func NewProfiler(cpuProfile, memProfile, tracePath string) *Profiler {
	return &Profiler{
		cpuProfile: cpuProfile,
		memProfile: memProfile,
		tracePath:  tracePath,
	}
}

// Start begins CPU profiling and execution tracing if configured.
func (p *Profiler) Start() error {
	if p.cpuProfile != "" {
		f, err := os.Create(p.cpuProfile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		p.cpuFile = f
	}

	if p.tracePath != "" {
		f, err := os.Create(p.tracePath)
		if err != nil {
			p.stopCPU()
			return fmt.Errorf("could not create trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			f.Close()
			p.stopCPU()
			return fmt.Errorf("could not start trace: %w", err)
		}
		p.traceFile = f
	}

	return nil
}

// Stop ends all profiling and writes the heap profile if configured.
// Failures are logged; a run is never failed by its profiler.
func (p *Profiler) Stop() {
	if p.traceFile != nil {
		trace.Stop()
		closeProfile("trace", p.traceFile)
		p.traceFile = nil
	}

	p.stopCPU()

	if p.memProfile == "" {
		return
	}
	f, err := os.Create(p.memProfile)
	if err != nil {
		log.Warn("could not create memory profile", "path", p.memProfile, "error", err)
		return
	}
	defer closeProfile("memory profile", f)

	runtime.GC() // Get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Warn("could not write memory profile", "path", p.memProfile, "error", err)
	}
}

func (p *Profiler) stopCPU() {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		closeProfile("CPU profile", p.cpuFile)
		p.cpuFile = nil
	}
}

func closeProfile(kind string, f *os.File) {
	if err := f.Close(); err != nil {
		log.Warn("could not close "+kind, "path", f.Name(), "error", err)
	}
}
