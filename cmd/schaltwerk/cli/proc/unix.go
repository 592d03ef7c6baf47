//go:build unix

package proc

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// UnixInspector inspects processes via signals and /proc.
type UnixInspector struct{}

// NewInspector returns the platform inspector.
func NewInspector() Inspector { return UnixInspector{} }

// IsRunning probes the pid with signal 0.
func (UnixInspector) IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

func (UnixInspector) SendTerminate(pid int) error {
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("terminate pid %d: %w", pid, err)
	}
	return nil
}

func (UnixInspector) SendKill(pid int) error {
	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil {
		return fmt.Errorf("kill pid %d: %w", pid, err)
	}
	return nil
}

// ReadCmdline reads /proc/<pid>/cmdline. On platforms without procfs
// (e.g. macOS) this returns an error, which callers treat as "unknown".
func (UnixInspector) ReadCmdline(pid int) ([]string, error) {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/cmdline")
	if err != nil {
		return nil, fmt.Errorf("read cmdline for pid %d: %w", pid, err)
	}
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	return parts, nil
}
