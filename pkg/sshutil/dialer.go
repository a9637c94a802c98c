package sshutil

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/rileyhilliard/dockmon/internal/errors"
)

// DefaultDockerSocket is the daemon socket used on the remote side when
// the ssh:// URL carries no path.
const DefaultDockerSocket = "/var/run/docker.sock"

// DefaultDialTimeout bounds the TCP connect and SSH handshake.
const DefaultDialTimeout = 10 * time.Second

// Target is a parsed ssh:// daemon host.
type Target struct {
	// Host is what gets resolved against ~/.ssh/config: alias, user@host or host:port.
	Host string
	// Socket is the daemon socket on the remote machine.
	Socket string
}

// ParseTarget parses ssh://[user@]host[:port][/path/to/docker.sock].
func ParseTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Host '%s' isn't a valid URL", raw),
			"Use ssh://user@server or ssh://server-alias.")
	}
	if u.Scheme != "ssh" {
		return Target{}, errors.New(errors.ErrSSH,
			fmt.Sprintf("Host '%s' is not an ssh:// URL", raw),
			"Use ssh://user@server or ssh://server-alias.")
	}
	if u.Hostname() == "" {
		return Target{}, errors.New(errors.ErrSSH,
			fmt.Sprintf("SSH host '%s' has no hostname", raw),
			"Use ssh://user@server or ssh://server-alias.")
	}

	host := u.Host
	if u.User != nil && u.User.Username() != "" {
		host = u.User.Username() + "@" + host
	}

	socket := u.Path
	if socket == "" || socket == "/" {
		socket = DefaultDockerSocket
	}

	return Target{Host: host, Socket: socket}, nil
}

// Tunnel forwards docker API connections to a remote daemon socket over a
// single SSH connection. The connection is opened on first use and shared
// by every stream after that.
type Tunnel struct {
	target  Target
	timeout time.Duration
	dial    func(ctx context.Context, host string, timeout time.Duration) (*Client, error)

	mu     sync.Mutex
	client *Client
}

// NewTunnel creates a tunnel for target. Nothing is dialled until DialContext.
func NewTunnel(target Target, timeout time.Duration) *Tunnel {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return &Tunnel{target: target, timeout: timeout, dial: Dial}
}

// DialContext matches the signature the docker client expects from a
// custom dialer. The network and address it is given are ignored.
func (t *Tunnel) DialContext(ctx context.Context, _, _ string) (net.Conn, error) {
	client, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := client.DialUnix(t.target.Socket)
	if err != nil {
		// Drop a dead connection so the next call redials.
		t.reset(client)
		return nil, err
	}
	return conn, nil
}

func (t *Tunnel) connect(ctx context.Context) (*Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return t.client, nil
	}

	client, err := t.dial(ctx, t.target.Host, t.timeout)
	if err != nil {
		return nil, err
	}
	t.client = client
	return client, nil
}

func (t *Tunnel) reset(stale *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == stale {
		t.client.Close()
		t.client = nil
	}
}

// Close shuts the SSH connection if one is open.
func (t *Tunnel) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}
