// Package sshtest provides a mock SSH executor for testing code that probes
// remote hosts, without any real network connections.
package sshtest

import (
	"errors"
	"regexp"
	"sync"
)

// Response is a canned result for a command pattern.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// MockClient simulates an SSH connection. Commands are matched against
// registered patterns (exact string first, then regexp) and answered with
// canned responses. Unmatched commands succeed with empty output, which
// mirrors how most probe commands behave on an idle host.
type MockClient struct {
	mu        sync.Mutex
	host      string
	address   string
	closed    bool
	exact     map[string]Response
	patterns  []patternResponse
	execCalls []string
}

type patternResponse struct {
	re   *regexp.Regexp
	resp Response
}

// NewMockClient creates a mock client for the given host.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:    host,
		address: host + ":22",
		exact:   make(map[string]Response),
	}
}

// Respond registers a canned response for an exact command string.
func (m *MockClient) Respond(cmd string, resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exact[cmd] = resp
}

// RespondPattern registers a canned response for commands matching a regexp.
// Patterns are tried in registration order after exact matches.
func (m *MockClient) RespondPattern(pattern string, resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, patternResponse{
		re:   regexp.MustCompile(pattern),
		resp: resp,
	})
}

// Exec answers a command from the registered responses.
func (m *MockClient) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, errors.New("connection closed")
	}
	m.execCalls = append(m.execCalls, cmd)

	if resp, ok := m.exact[cmd]; ok {
		return []byte(resp.Stdout), []byte(resp.Stderr), resp.ExitCode, resp.Err
	}
	for _, pr := range m.patterns {
		if pr.re.MatchString(cmd) {
			return []byte(pr.resp.Stdout), []byte(pr.resp.Stderr), pr.resp.ExitCode, pr.resp.Err
		}
	}

	return nil, nil, 0, nil
}

// Close marks the connection closed; subsequent Exec calls fail.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetHost returns the host the mock was created for.
func (m *MockClient) GetHost() string {
	return m.host
}

// GetAddress returns the simulated host:port address.
func (m *MockClient) GetAddress() string {
	return m.address
}

// ExecCalls returns the commands executed so far, in order.
func (m *MockClient) ExecCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.execCalls))
	copy(out, m.execCalls)
	return out
}
