package remote

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

type handlerFunc func(command string) (stdout, stderr string, status uint32)

type testServer struct {
	addr    string
	hostKey ssh.Signer
}

func startServer(t *testing.T, handle handlerFunc) *testServer {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(_ ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if string(pass) == "secret" {
				return nil, nil
			}
			return nil, errors.New("denied")
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			go serveConn(nc, cfg, handle)
		}
	}()

	return &testServer{addr: ln.Addr().String(), hostKey: signer}
}

func serveConn(nc net.Conn, cfg *ssh.ServerConfig, handle handlerFunc) {
	_, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		nc.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, chReqs, err := newCh.Accept()
		if err != nil {
			continue
		}
		go func() {
			defer ch.Close()
			for req := range chReqs {
				if req.Type != "exec" {
					_ = req.Reply(false, nil)
					continue
				}
				var payload struct{ Command string }
				_ = ssh.Unmarshal(req.Payload, &payload)
				_ = req.Reply(true, nil)

				out, errOut, status := handle(payload.Command)
				_, _ = io.WriteString(ch, out)
				_, _ = io.WriteString(ch.Stderr(), errOut)
				_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
				return
			}
		}()
	}
}

func (s *testServer) config(t *testing.T) Config {
	t.Helper()
	host, portStr, err := net.SplitHostPort(s.addr)
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(portStr)
	return Config{
		Host:                  host,
		Port:                  port,
		User:                  "root",
		Password:              "secret",
		InsecureIgnoreHostKey: true,
		Timeout:               5 * time.Second,
	}
}

func TestRunSuccessAndFailure(t *testing.T) {
	srv := startServer(t, func(cmd string) (string, string, uint32) {
		if cmd == "docker ps -a" {
			return "CONTAINER ID\n", "", 0
		}
		return "", "unknown command\n", 125
	})

	client, err := Dial(context.Background(), srv.config(t))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	res, err := client.Run(context.Background(), "docker ps -a")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Success() || res.Stdout != "CONTAINER ID\n" || res.Command != "docker ps -a" {
		t.Errorf("unexpected result %+v", res)
	}

	res, err = client.Run(context.Background(), "docker bogus")
	if err != nil {
		t.Fatalf("non-zero exit must not be an error: %v", err)
	}
	if res.Success() || res.ExitCode != 125 || res.Stderr != "unknown command\n" {
		t.Errorf("unexpected failure result %+v", res)
	}
}

func TestRunCancelled(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	srv := startServer(t, func(string) (string, string, uint32) {
		<-release
		return "", "", 0
	})

	client, err := Dial(context.Background(), srv.config(t))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := client.Run(ctx, "sleep 60"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestDialWrongPassword(t *testing.T) {
	srv := startServer(t, func(string) (string, string, uint32) { return "", "", 0 })
	cfg := srv.config(t)
	cfg.Password = "wrong"

	if _, err := Dial(context.Background(), cfg); err == nil {
		t.Error("expected authentication failure")
	}
}

func TestDialKnownHosts(t *testing.T) {
	srv := startServer(t, func(string) (string, string, uint32) { return "ok", "", 0 })
	cfg := srv.config(t)
	cfg.InsecureIgnoreHostKey = false

	dir := t.TempDir()
	cfg.KnownHosts = filepath.Join(dir, "known_hosts")
	line := knownhosts.Line([]string{srv.addr}, srv.hostKey.PublicKey())
	if err := os.WriteFile(cfg.KnownHosts, []byte(line+"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	client, err := Dial(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Dial with known host failed: %v", err)
	}
	client.Close()

	// a different key for the same address must be refused
	_, other, _ := ed25519.GenerateKey(rand.Reader)
	otherSigner, _ := ssh.NewSignerFromKey(other)
	line = knownhosts.Line([]string{srv.addr}, otherSigner.PublicKey())
	if err := os.WriteFile(cfg.KnownHosts, []byte(line+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Dial(context.Background(), cfg); err == nil {
		t.Error("expected host key mismatch")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := startServer(t, func(string) (string, string, uint32) { return "", "", 0 })
	client, err := Dial(context.Background(), srv.config(t))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := client.Run(context.Background(), "true"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestClientConfig(t *testing.T) {
	if _, err := (Config{}).ClientConfig(); err == nil {
		t.Error("expected missing host error")
	}
	if _, err := (Config{Host: "h", InsecureIgnoreHostKey: true}).ClientConfig(); !errors.Is(err, ErrNoAuth) {
		t.Errorf("expected ErrNoAuth, got %v", err)
	}
	if _, err := (Config{Host: "h", KeyFile: "/does/not/exist", InsecureIgnoreHostKey: true}).ClientConfig(); err == nil {
		t.Error("expected key file error")
	}

	cc, err := (Config{Host: "h", Password: "p", InsecureIgnoreHostKey: true}).ClientConfig()
	if err != nil {
		t.Fatalf("ClientConfig failed: %v", err)
	}
	if cc.User != "root" || cc.Timeout != 30*time.Second {
		t.Errorf("unexpected defaults user=%q timeout=%v", cc.User, cc.Timeout)
	}
}

func TestAddress(t *testing.T) {
	if got := (Config{Host: "example.com"}).Address(); got != "example.com:22" {
		t.Errorf("Address = %q", got)
	}
	if got := (Config{Host: "::1", Port: 2222}).Address(); got != "[::1]:2222" {
		t.Errorf("Address = %q", got)
	}
}
