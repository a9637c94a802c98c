package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rileyhilliard/dockmon/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// defaultKeyNames are tried in ~/.ssh after the configured IdentityFile.
var defaultKeyNames = []string{"id_ed25519", "id_rsa", "id_ecdsa"}

func defaultKeyFiles() []string {
	files := make([]string, len(defaultKeyNames))
	for i, name := range defaultKeyNames {
		files[i] = filepath.Join(sshDir(), name)
	}
	return files
}

// authChain collects the auth methods for one dial: the agent first, when
// it holds keys, then unencrypted key files.
type authChain struct {
	methods []ssh.AuthMethod
	agent   io.Closer
	// locked lists key files that need a passphrase.
	locked []string
}

func newAuthChain(identityFile string) *authChain {
	a := &authChain{}
	a.addAgent()

	seen := map[string]bool{}
	for _, path := range append([]string{identityFile}, defaultKeyFiles()...) {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		a.addKeyFile(path)
	}
	return a
}

func (a *authChain) addAgent() {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return
	}
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return
	}

	// An empty agent placed first makes servers give up early.
	client := agent.NewClient(conn)
	if signers, err := client.Signers(); err != nil || len(signers) == 0 {
		conn.Close() //nolint:errcheck // Unused
		return
	}
	a.agent = conn
	a.methods = append(a.methods, ssh.PublicKeysCallback(client.Signers))
}

func (a *authChain) addKeyFile(path string) {
	method, err := keyFileAuth(path)
	if err != nil {
		var locked *LockedKeyError
		if stderrors.As(err, &locked) {
			a.locked = append(a.locked, path)
		}
		return
	}
	a.methods = append(a.methods, method)
}

func (a *authChain) close() {
	if a.agent != nil {
		a.agent.Close() //nolint:errcheck // Best-effort close, error not actionable
	}
}

func (a *authChain) noMethodsError() error {
	if len(a.locked) > 0 {
		return errors.New(errors.ErrSSH,
			"Found SSH key(s) but they need a passphrase: "+strings.Join(a.locked, ", "),
			addKeysHint("Load them into the agent:", a.locked))
	}
	return errors.New(errors.ErrSSH,
		"No SSH keys available",
		"Start ssh-agent and add a key (ssh-add), or set IdentityFile in ~/.ssh/config.")
}

// keyFileAuth loads a private key. A passphrase-protected key gives a
// *LockedKeyError.
func keyFileAuth(path string) (ssh.AuthMethod, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || bytes.Contains(data, []byte("ENCRYPTED")) {
			return nil, &LockedKeyError{Path: path}
		}
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

func addKeysHint(header string, keys []string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, key := range keys {
		if runtime.GOOS == "darwin" {
			fmt.Fprintf(&b, "  ssh-add --apple-use-keychain %s\n", key)
		} else {
			fmt.Fprintf(&b, "  ssh-add %s\n", key)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// LockedKeyError is returned for a key file that needs a passphrase.
type LockedKeyError struct {
	Path string
}

func (e *LockedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s needs a passphrase", e.Path)
}

// HostKeyError reports a host key that differs from known_hosts.
type HostKeyError struct {
	Hostname   string
	Received   string
	KnownHosts string
	Known      []string
}

func (e *HostKeyError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.Received)
}

// Suggestion explains how to refresh the stale known_hosts entry.
func (e *HostKeyError) Suggestion() string {
	host := e.Hostname
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	known := "unknown"
	if len(e.Known) > 0 {
		known = strings.Join(e.Known, ", ")
	}
	return fmt.Sprintf("known_hosts has %s, the server sent %s.\n"+
		"  If the server was rebuilt, replace the entry:\n"+
		"    ssh-keygen -R %s && ssh-keyscan %s >> %s",
		known, e.Received, host, host, e.KnownHosts)
}

// knownHostsCallback verifies host keys against path, creating an empty
// file when none exists. Mismatches become *HostKeyError.
func knownHostsCallback(path string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			return nil, err
		}
	}

	check, err := knownhosts.New(path)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := check(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
			mismatch := &HostKeyError{
				Hostname:   hostname,
				Received:   key.Type(),
				KnownHosts: path,
			}
			for _, k := range keyErr.Want {
				mismatch.Known = append(mismatch.Known, k.Key.Type())
			}
			return mismatch
		}
		return err
	}, nil
}
