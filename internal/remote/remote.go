// Package remote runs commands on a Linux host over SSH.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"opsdeck/internal/logger"
)

// ErrNoAuth is returned when neither a password nor a key is configured.
var ErrNoAuth = errors.New("no SSH password or private key configured")

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("ssh client closed")

// Executor runs a single command and reports its outcome.
type Executor interface {
	Run(ctx context.Context, command string) (*Result, error)
	Close() error
}

// Result is the outcome of one remote command.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Success reports whether the command exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Config holds connection settings.
type Config struct {
	Host                  string
	Port                  int
	User                  string
	Password              string
	KeyFile               string
	KnownHosts            string
	InsecureIgnoreHostKey bool
	Timeout               time.Duration
}

// Address returns host:port, defaulting the port to 22.
func (c Config) Address() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func (c Config) user() string {
	if c.User == "" {
		return "root"
	}
	return c.User
}

// authMethods builds the auth chain: key first, then password.
func (c Config) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if c.KeyFile != "" {
		pem, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if c.Password != "" {
		methods = append(methods, ssh.Password(c.Password))
	}

	if len(methods) == 0 {
		return nil, ErrNoAuth
	}
	return methods, nil
}

func (c Config) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	path := c.KnownHosts
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts %s: %w", path, err)
	}
	return cb, nil
}

// ClientConfig turns c into an ssh.ClientConfig.
func (c Config) ClientConfig() (*ssh.ClientConfig, error) {
	if c.Host == "" {
		return nil, errors.New("ssh host is not configured")
	}
	auth, err := c.authMethods()
	if err != nil {
		return nil, err
	}
	hostKey, err := c.hostKeyCallback()
	if err != nil {
		return nil, err
	}
	return &ssh.ClientConfig{
		User:            c.user(),
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         c.timeout(),
	}, nil
}

// Client is an open SSH connection. Each Run opens its own session, so a
// Client may be shared between goroutines.
type Client struct {
	addr   string
	conn   *ssh.Client
	log    *logger.Logger
	mu     sync.Mutex
	closed bool
}

// Dial connects and authenticates, honoring both ctx and the configured timeout.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}

	addr := cfg.Address()
	ctx, cancel := context.WithTimeout(ctx, clientCfg.Timeout)
	defer cancel()

	dialer := net.Dialer{}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = netConn.SetDeadline(deadline)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, clientCfg)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", addr, err)
	}
	// the deadline only bounds the handshake
	_ = netConn.SetDeadline(time.Time{})

	log := logger.With("remote")
	log.Debug("connected", "addr", addr, "user", clientCfg.User)

	return &Client{
		addr: addr,
		conn: ssh.NewClient(sshConn, chans, reqs),
		log:  log,
	}, nil
}

// Addr returns the remote address.
func (c *Client) Addr() string {
	return c.addr
}

// Run executes command in a fresh session. A non-zero exit status is
// reported in Result.ExitCode, not as an error.
func (c *Client) Run(ctx context.Context, command string) (*Result, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	session, err := c.conn.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		session.Close()
		<-done
		return nil, ctx.Err()
	case err = <-done:
	}

	res := &Result{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *ssh.ExitError
	var missing *ssh.ExitMissingError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitStatus()
	case errors.As(err, &missing):
		res.ExitCode = -1
	default:
		return nil, fmt.Errorf("remote command failed: %w", err)
	}

	c.log.Debug("command finished", "exit", res.ExitCode, "duration", res.Duration)
	return res, nil
}

// Close disconnects. Calling it more than once is safe.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
