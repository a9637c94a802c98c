package sshutil

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/kevinburke/ssh_config"
)

// endpoint is a destination resolved against ~/.ssh/config.
type endpoint struct {
	hostname     string
	port         string
	user         string
	identityFile string
}

func (e endpoint) address() string {
	return net.JoinHostPort(e.hostname, e.port)
}

// matchWarned keeps the Match block warning to once per process.
var matchWarned sync.Once

// resolveEndpoint splits dest into [user@]host[:port] and fills the gaps
// from the ssh config at configPath. Parts spelled out in dest win.
func resolveEndpoint(dest, configPath string) endpoint {
	ep := endpoint{port: "22", user: currentUser()}

	host, user, hasUser := splitUser(dest)
	if hasUser {
		ep.user = user
	}
	host, port, hasPort := splitPort(host)
	if hasPort {
		ep.port = port
	}
	ep.hostname = host

	content, matchLine, err := readSSHConfig(configPath)
	if err != nil {
		return ep
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return ep
	}

	lookup := func(key string) string {
		v, _ := cfg.Get(host, key)
		return v
	}

	found := false
	if v := lookup("HostName"); v != "" {
		ep.hostname, found = v, true
	}
	if v := lookup("Port"); v != "" {
		found = true
		if !hasPort {
			ep.port = v
		}
	}
	if v := lookup("User"); v != "" {
		found = true
		if !hasUser {
			ep.user = v
		}
	}
	if v := lookup("IdentityFile"); v != "" {
		ep.identityFile, found = expandPath(v), true
	}

	// ssh_config cannot parse Match, so entries after one are invisible.
	if matchLine > 0 && !found {
		matchWarned.Do(func() {
			warn("Host '%s' not found in SSH config, which has a Match block at line %d. "+
				"Entries after that line are ignored; move '%s' above it.", host, matchLine, host)
		})
	}

	return ep
}

func splitUser(dest string) (host, user string, ok bool) {
	before, after, found := strings.Cut(dest, "@")
	if !found {
		return dest, "", false
	}
	return after, before, true
}

func splitPort(host string) (string, string, bool) {
	i := strings.LastIndex(host, ":")
	if i < 0 {
		return host, "", false
	}
	port := host[i+1:]
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return host, "", false
	}
	return host[:i], port, true
}

// readSSHConfig returns the config up to its first Match directive, and the
// 1-indexed line of that directive (0 when there is none).
func readSSHConfig(path string) ([]byte, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) > 0 && strings.EqualFold(fields[0], "match") {
			return []byte(strings.Join(lines[:i], "\n")), i + 1, nil
		}
	}
	return data, 0, nil
}

func sshDir() string {
	return filepath.Join(homeDir(), ".ssh")
}

func sshConfigPath() string  { return filepath.Join(sshDir(), "config") }
func knownHostsPath() string { return filepath.Join(sshDir(), "known_hosts") }

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(homeDir(), rest)
	}
	return path
}
