package sshutil

// Executor is the command-execution capability the probing layer depends on.
// Both the real Client and the sshtest mock satisfy this interface, which is
// what keeps network I/O out of the probe and cycle tests.
type Executor interface {
	// Exec runs a command and returns stdout, stderr, and exit code.
	// Exit code is -1 if the command couldn't be executed at all.
	// A non-zero exit code with nil error means the command ran but failed.
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)

	// Close closes the underlying connection.
	Close() error

	// GetHost returns the original host string used to connect.
	GetHost() string

	// GetAddress returns the resolved host:port address.
	GetAddress() string
}
