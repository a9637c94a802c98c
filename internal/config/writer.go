package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Marshal renders cfg as commented YAML. Durations are written in their
// human form (1s) rather than nanoseconds.
func Marshal(cfg *Config) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	add := func(key, comment string, value *yaml.Node) {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key, HeadComment: comment},
			value)
	}
	str := func(s string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	}
	boolean := func(b bool) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
	}
	integer := func(i int) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)}
	}

	add("host", "Daemon endpoint. Empty uses DOCKER_HOST or the default socket.", str(cfg.Host))
	add("interval", "How often containers and stats are refreshed.", str(cfg.Interval.String()))
	add("show_all", "Include stopped containers.", boolean(cfg.ShowAll))
	add("timestamps", "Prefix log lines with their timestamp.", boolean(cfg.Timestamps))
	add("show_std_err", "Include stderr in the logs panel.", boolean(cfg.ShowStdErr))
	add("color", "auto, always or never.", str(cfg.Color))
	add("color_logs", "Keep ANSI colours found in container logs.", boolean(cfg.ColorLogs))
	add("save_dir", "Where saved logs are written.", str(cfg.SaveDir))
	add("log_buffer", "Log lines kept per container.", integer(cfg.LogBuffer))
	add("scroll_step", "Lines moved per scroll.", integer(cfg.ScrollStep))
	add("gui", "Run the dashboard. false runs headless.", boolean(cfg.GUI))
	add("keymap", keymapComment(), keymapNode(cfg.Keymap))

	out, err := yaml.Marshal(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{doc}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}

func keymapNode(keymap map[string][]string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, a := range Actions() {
		keys, ok := keymap[string(a)]
		if !ok {
			continue
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, k := range keys {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k})
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(a)},
			seq)
	}
	return node
}

// keymapComment lists every action with its default keys so users know
// what can be rebound.
func keymapComment() string {
	var b strings.Builder
	b.WriteString("Override key bindings, up to two keys per action. Defaults:")
	for _, a := range Actions() {
		b.WriteString(fmt.Sprintf("\n  %s: [%s]", a, strings.Join(DefaultKeys(a), ", ")))
	}
	return b.String()
}

// WriteFile writes cfg to path, creating parent directories. It refuses to
// overwrite an existing file unless force is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
