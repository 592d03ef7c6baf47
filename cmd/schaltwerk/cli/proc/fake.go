package proc

import (
	"fmt"
	"sync"
)

// FakeInspector is an in-memory Inspector for tests.
type FakeInspector struct {
	mu       sync.Mutex
	running  map[int]bool
	cmdlines map[int][]string
	signals  []string
}

// NewFakeInspector returns a fake with no processes.
func NewFakeInspector() *FakeInspector {
	return &FakeInspector{
		running:  make(map[int]bool),
		cmdlines: make(map[int][]string),
	}
}

// AddProcess registers a running process.
func (f *FakeInspector) AddProcess(pid int, cmdline ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running[pid] = true
	f.cmdlines[pid] = cmdline
}

func (f *FakeInspector) IsRunning(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running[pid]
}

func (f *FakeInspector) SendTerminate(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, fmt.Sprintf("term:%d", pid))
	delete(f.running, pid)
	return nil
}

func (f *FakeInspector) SendKill(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, fmt.Sprintf("kill:%d", pid))
	delete(f.running, pid)
	return nil
}

func (f *FakeInspector) ReadCmdline(pid int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmdline, ok := f.cmdlines[pid]
	if !ok {
		return nil, fmt.Errorf("no such pid %d", pid)
	}
	return cmdline, nil
}

// Signals returns the signal log.
func (f *FakeInspector) Signals() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.signals...)
}
