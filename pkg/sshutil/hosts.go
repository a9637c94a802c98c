package sshutil

import (
	"bytes"
	"os"
	"sort"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// HostEntry is a concrete host alias from ~/.ssh/config that dockmon can
// reach with an ssh:// daemon URL.
type HostEntry struct {
	Alias        string
	Hostname     string
	User         string
	Port         string
	IdentityFile string
}

// DockerURL is the value to pass to --host for this entry. The alias is
// used as-is so ~/.ssh/config keeps supplying user, port and key.
func (h HostEntry) DockerURL() string {
	return "ssh://" + h.Alias
}

// Description summarises where the alias points.
func (h HostEntry) Description() string {
	var parts []string

	if h.Hostname != "" && h.Hostname != h.Alias {
		parts = append(parts, h.Hostname)
	}
	if h.User != "" {
		parts = append(parts, "user: "+h.User)
	}
	if h.Port != "" && h.Port != "22" {
		parts = append(parts, "port: "+h.Port)
	}

	if len(parts) == 0 {
		return h.Alias
	}
	return strings.Join(parts, ", ")
}

// HasKey reports whether the entry's IdentityFile exists, falling back to
// the default key files in ~/.ssh.
func (h HostEntry) HasKey() bool {
	if h.IdentityFile != "" {
		if _, err := os.Stat(h.IdentityFile); err == nil {
			return true
		}
	}
	for _, key := range defaultKeyFiles() {
		if _, err := os.Stat(key); err == nil {
			return true
		}
	}
	return false
}

// ListHosts parses ~/.ssh/config.
func ListHosts() ([]HostEntry, error) {
	return ListHostsFile(sshConfigPath())
}

// ListHostsFile returns the concrete aliases in an ssh config file, sorted.
// Wildcard patterns are skipped. A missing file is not an error.
func ListHostsFile(configPath string) ([]HostEntry, error) {
	content, _, err := readSSHConfig(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var hosts []HostEntry
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()
			if strings.ContainsAny(alias, "*?!") || seen[alias] {
				continue
			}
			seen[alias] = true

			entry := HostEntry{Alias: alias}
			entry.Hostname, _ = cfg.Get(alias, "HostName")
			entry.User, _ = cfg.Get(alias, "User")
			entry.Port, _ = cfg.Get(alias, "Port")
			if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
				entry.IdentityFile = expandPath(identity)
			}
			hosts = append(hosts, entry)
		}
	}

	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Alias < hosts[j].Alias
	})

	return hosts, nil
}
