package sshutil

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/rileyhilliard/dockmon/internal/errors"
	"github.com/rileyhilliard/dockmon/internal/logger"
	"golang.org/x/crypto/ssh"
)

// Client is one SSH connection to a daemon host.
type Client struct {
	conn *ssh.Client
	// agent is the ssh-agent connection used to authenticate, if any. It
	// lives as long as the SSH connection.
	agent io.Closer

	Host    string // Destination as given: alias, user@host or host:port
	Address string // Resolved host:port
}

// warn logs through the default logger so nothing reaches the terminal
// the dashboard owns.
func warn(format string, args ...interface{}) {
	logger.Default().Warn(format, args...)
}

// Dial opens an SSH connection to dest, an ~/.ssh/config alias or
// [user@]host[:port]. User, port, host name and identity file come from
// ~/.ssh/config unless dest spells them out.
func Dial(ctx context.Context, dest string, timeout time.Duration) (*Client, error) {
	ep := resolveEndpoint(dest, sshConfigPath())

	auth := newAuthChain(ep.identityFile)
	if len(auth.methods) == 0 {
		auth.close()
		return nil, auth.noMethodsError()
	}

	hostKeys, err := knownHostsCallback(knownHostsPath())
	if err != nil {
		auth.close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't load ~/.ssh/known_hosts",
			"Check the file is readable, or remove it to start fresh.")
	}

	address := ep.address()
	dialer := net.Dialer{Timeout: timeout}
	tcp, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		auth.close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", dest, address),
			dialHint(err))
	}

	cfg := &ssh.ClientConfig{
		User:            ep.user,
		Auth:            auth.methods,
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(tcp, address, cfg)
	if err != nil {
		tcp.Close() //nolint:errcheck // Handshake already failed
		auth.close()

		var mismatch *HostKeyError
		if stderrors.As(err, &mismatch) {
			return nil, errors.New(errors.ErrSSH, mismatch.Error(), mismatch.Suggestion())
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", dest),
			handshakeHint(err, auth.locked))
	}

	return &Client{
		conn:    ssh.NewClient(sshConn, chans, reqs),
		agent:   auth.agent,
		Host:    dest,
		Address: address,
	}, nil
}

// Close closes the SSH connection and the agent connection behind it.
func (c *Client) Close() error {
	if c.agent != nil {
		c.agent.Close() //nolint:errcheck // Best-effort close, error not actionable
		c.agent = nil
	}
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// DialUnix opens a stream to a unix socket on the remote host, forwarded
// over the SSH connection.
func (c *Client) DialUnix(path string) (net.Conn, error) {
	conn, err := c.conn.Dial("unix", path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't open %s on '%s'", path, c.Host),
			"Check the docker daemon is running there and your user can access its socket.")
	}
	return conn, nil
}

type hint struct {
	needles []string
	text    string
}

var dialHints = []hint{
	{[]string{"connection refused"}, "Nothing is listening for SSH there. Try: ssh <host>"},
	{[]string{"no route to host", "network is unreachable"}, "The host can't be routed to. Check your network or VPN."},
	{[]string{"timeout"}, "The connection timed out. The host may be down or behind a firewall."},
	{[]string{"no such host"}, "The name doesn't resolve. Check the alias in ~/.ssh/config or use an IP."},
}

const authHint = "The server rejected every key. Check: ssh-add -l"

var handshakeHints = []hint{
	{[]string{"host key"}, "The host key couldn't be verified. Connect once with: ssh <host>"},
	{[]string{"unable to authenticate", "no supported methods"}, authHint},
}

func matchHint(err error, hints []hint, fallback string) string {
	msg := err.Error()
	for _, h := range hints {
		for _, n := range h.needles {
			if strings.Contains(msg, n) {
				return h.text
			}
		}
	}
	return fallback
}

func dialHint(err error) string {
	return matchHint(err, dialHints, "Make sure the host is reachable: ssh <host>")
}

func handshakeHint(err error, locked []string) string {
	h := matchHint(err, handshakeHints, "SSH setup failed. Try connecting by hand: ssh -v <host>")
	if h == authHint && len(locked) > 0 {
		return addKeysHint("Only passphrase-protected keys were found. Load them into the agent:", locked)
	}
	return h
}
