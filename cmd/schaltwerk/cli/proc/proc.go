// Package proc abstracts process inspection behind the exact methods the
// engine uses, so platform behavior is an adapter selected at startup and
// tests run against a double.
package proc

// Inspector inspects and signals OS processes.
type Inspector interface {
	// IsRunning reports whether a process with the pid exists.
	IsRunning(pid int) bool

	// SendTerminate asks the process to exit (SIGTERM on unix).
	SendTerminate(pid int) error

	// SendKill forcibly kills the process (SIGKILL on unix).
	SendKill(pid int) error

	// ReadCmdline returns the process's command line arguments.
	ReadCmdline(pid int) ([]string, error)
}
