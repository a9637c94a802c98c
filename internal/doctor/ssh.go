package doctor

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/dockmon/pkg/sshutil"
)

// SSHTargetCheck verifies an ssh:// host parses and, when it names an alias
// from ~/.ssh/config, that a key is available for it.
type SSHTargetCheck struct {
	Host string
	// ConfigPath overrides ~/.ssh/config.
	ConfigPath string
}

func (c *SSHTargetCheck) Name() string     { return "ssh_target" }
func (c *SSHTargetCheck) Category() string { return "SSH" }

func (c *SSHTargetCheck) Run() CheckResult {
	target, err := sshutil.ParseTarget(c.Host)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errorLine(err),
			Suggestion: "Use ssh://user@server or ssh://server-alias",
		}
	}

	path := c.ConfigPath
	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".ssh", "config")
	}
	hosts, err := sshutil.ListHostsFile(path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Cannot parse %s: %s", path, errorLine(err)),
			Suggestion: "Fix the ssh config syntax; dockmon falls back to defaults",
		}
	}

	alias := target.Host
	if i := strings.LastIndex(alias, "@"); i >= 0 {
		alias = alias[i+1:]
	}
	for _, h := range hosts {
		if h.Alias != alias {
			continue
		}
		if !h.HasKey() {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusWarn,
				Message:    fmt.Sprintf("Alias %s found but no key file exists", alias),
				Suggestion: "Set IdentityFile for the alias, or load a key into ssh-agent",
			}
		}
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("Alias %s -> %s (socket %s)", alias, h.Description(), target.Socket),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Target %s (socket %s), not an ssh config alias", target.Host, target.Socket),
	}
}

// SSHAgentCheck verifies the SSH agent socket is reachable.
type SSHAgentCheck struct{}

func (c *SSHAgentCheck) Name() string     { return "ssh_agent" }
func (c *SSHAgentCheck) Category() string { return "SSH" }

func (c *SSHAgentCheck) Run() CheckResult {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "SSH agent not running, only key files will be tried",
			Suggestion: "Fix: eval $(ssh-agent) && ssh-add",
		}
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "SSH agent socket not accessible",
			Suggestion: "Fix: eval $(ssh-agent) && ssh-add",
		}
	}
	conn.Close() //nolint:errcheck // Best-effort close, error not actionable

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "SSH agent reachable",
	}
}

// NewSSHChecks returns the SSH checks, or nil when host is not ssh://.
func NewSSHChecks(host string) []Check {
	if !strings.HasPrefix(host, "ssh://") {
		return nil
	}
	return []Check{
		&SSHTargetCheck{Host: host},
		&SSHAgentCheck{},
	}
}
