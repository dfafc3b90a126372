// Package sshutil provides the SSH transport used to probe remote instances:
// dialing with settings resolved from ~/.ssh/config, agent and key-file
// authentication, known_hosts verification, and single-command execution.
package sshutil

import (
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kevinburke/ssh_config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/cfdtools/solvewatch/internal/errors"
)

// Client wraps an SSH connection with the metadata needed for reporting.
type Client struct {
	*ssh.Client
	Host    string // The host string used to connect (address or alias)
	Address string // The resolved host:port
}

// Options carries the fleet-wide connection settings from config. Zero values
// fall back to ~/.ssh/config entries and then to defaults.
type Options struct {
	User          string
	IdentityFile  string
	DialTimeout   time.Duration
	StrictHostKey bool
}

// Dial establishes an SSH connection to the given host. The host can be a
// bare address, an address:port, or an ~/.ssh/config alias; config entries
// fill in whatever Options leaves unset.
func Dial(host string, opts Options) (*Client, error) {
	settings := resolveSettings(host, opts)

	config, err := buildClientConfig(settings, opts)
	if err != nil {
		var swErr *errors.Error
		if stderrors.As(err, &swErr) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", host),
			"Check your keys are loaded: ssh-add -l")
	}

	timeout := opts.DialTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	address := settings.address()
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", host, address),
			suggestionForDialError(err))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		if isAuthError(err) {
			return nil, errors.WrapWithCode(err, errors.ErrAuth,
				fmt.Sprintf("Authentication to '%s' was rejected", host),
				"Check the ssh.user and ssh.identity_file settings, and that the key is loaded: ssh-add -l")
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
			"Try connecting manually first: ssh "+host)
	}

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    host,
		Address: address,
	}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the original host string used to connect.
func (c *Client) GetHost() string {
	return c.Host
}

// GetAddress returns the resolved host:port address.
func (c *Client) GetAddress() string {
	return c.Address
}

// settings holds resolved connection parameters for one host.
type settings struct {
	hostname     string
	port         string
	user         string
	identityFile string
}

func (s *settings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSettings merges the host string, ~/.ssh/config, and Options.
// Explicit Options win over ssh_config entries, which win over defaults.
func resolveSettings(host string, opts Options) *settings {
	s := &settings{port: "22", user: "ubuntu"}

	if colon := strings.LastIndex(host, ":"); colon != -1 && isAllDigits(host[colon+1:]) {
		s.port = host[colon+1:]
		host = host[:colon]
	}
	s.hostname = host

	if hostname := ssh_config.Get(host, "HostName"); hostname != "" {
		s.hostname = hostname
	}
	if port := ssh_config.Get(host, "Port"); port != "" && s.port == "22" {
		s.port = port
	}
	if user := ssh_config.Get(host, "User"); user != "" {
		s.user = user
	}
	if identity := ssh_config.Get(host, "IdentityFile"); identity != "" {
		s.identityFile = expandPath(identity)
	}

	if opts.User != "" {
		s.user = opts.User
	}
	if opts.IdentityFile != "" {
		s.identityFile = expandPath(opts.IdentityFile)
	}

	return s
}

// buildClientConfig assembles auth methods and host key verification.
func buildClientConfig(s *settings, opts Options) (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod

	if agentAuth := sshAgentAuth(); agentAuth != nil {
		authMethods = append(authMethods, agentAuth)
	}

	if s.identityFile != "" {
		if keyAuth, err := keyFileAuth(s.identityFile); err == nil {
			authMethods = append(authMethods, keyAuth)
		} else if !os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrAuth,
				"Can't use identity file "+s.identityFile,
				"Check the file exists and is a readable private key")
		}
	}

	for _, keyPath := range defaultKeyFiles() {
		if keyPath == s.identityFile {
			continue
		}
		if keyAuth, err := keyFileAuth(keyPath); err == nil {
			authMethods = append(authMethods, keyAuth)
		}
	}

	if len(authMethods) == 0 {
		return nil, errors.New(errors.ErrAuth,
			"No SSH auth methods available",
			"Load a key into the agent (ssh-add) or set ssh.identity_file in the config")
	}

	var hostKeyCallback ssh.HostKeyCallback
	if opts.StrictHostKey {
		var err error
		hostKeyCallback, err = knownHostsCallback()
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts: %w", err)
		}
	} else {
		hostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // User explicitly disabled host key checking
	}

	return &ssh.ClientConfig{
		User:            s.user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         10 * time.Second,
	}, nil
}

// agentConn holds the reusable SSH agent connection, shared across dials.
var (
	agentConn     net.Conn
	agentClient   agent.ExtendedAgent
	agentConnOnce sync.Once
)

// sshAgentAuth returns an auth method using the SSH agent if available.
// Returns nil if the agent is absent or has no keys loaded.
func sshAgentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	agentConnOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentConn = conn
		agentClient = agent.NewClient(conn)
	})

	if agentClient == nil {
		return nil
	}

	signers, err := agentClient.Signers()
	if err != nil || len(signers) == 0 {
		return nil
	}

	return ssh.PublicKeysCallback(agentClient.Signers)
}

// CloseAgent closes the SSH agent connection if one is open.
func CloseAgent() {
	if agentConn != nil {
		agentConn.Close()
	}
}

// keyFileAuth returns an auth method using a private key file.
func keyFileAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, err
	}

	return ssh.PublicKeys(signer), nil
}

// knownHostsCallback loads ~/.ssh/known_hosts, creating it when absent so a
// fresh machine can still connect to already-scanned hosts.
func knownHostsCallback() (ssh.HostKeyCallback, error) {
	knownHostsPath := filepath.Join(homeDir(), ".ssh", "known_hosts")
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0o700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0o600); err != nil {
			return nil, err
		}
	}
	return knownhosts.New(knownHostsPath)
}

func defaultKeyFiles() []string {
	return []string{
		filepath.Join(homeDir(), ".ssh", "id_ed25519"),
		filepath.Join(homeDir(), ".ssh", "id_rsa"),
		filepath.Join(homeDir(), ".ssh", "id_ecdsa"),
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isAuthError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "unable to authenticate") ||
		strings.Contains(errStr, "no supported methods")
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") {
		return "Is SSH running on that instance? Try: ssh <address>"
	}
	if strings.Contains(errStr, "no route to host") || strings.Contains(errStr, "network is unreachable") {
		return "Can't route to the instance. Check your network connection."
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "i/o timeout") {
		return "Connection timed out. The instance might be stopped or firewalled."
	}
	return "Make sure the instance is reachable: ping <address>"
}
