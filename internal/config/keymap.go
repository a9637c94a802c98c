package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/rileyhilliard/dockmon/internal/errors"
)

// Action names a rebindable dashboard action. These are the keys accepted
// under the keymap section of the config file.
type Action string

const (
	ActionQuit         Action = "quit"
	ActionNextPanel    Action = "next_panel"
	ActionPrevPanel    Action = "prev_panel"
	ActionUp           Action = "up"
	ActionDown         Action = "down"
	ActionFirst        Action = "first"
	ActionLast         Action = "last"
	ActionRunCommand   Action = "run_command"
	ActionSortName     Action = "sort_name"
	ActionSortState    Action = "sort_state"
	ActionSortStatus   Action = "sort_status"
	ActionSortCPU      Action = "sort_cpu"
	ActionSortMemory   Action = "sort_memory"
	ActionSortID       Action = "sort_id"
	ActionSortImage    Action = "sort_image"
	ActionSortRX       Action = "sort_rx"
	ActionSortTX       Action = "sort_tx"
	ActionSortReset    Action = "sort_reset"
	ActionExec         Action = "exec"
	ActionSaveLogs     Action = "save_logs"
	ActionInspect      Action = "inspect"
	ActionFilter       Action = "filter"
	ActionHelp         Action = "help"
	ActionClear        Action = "clear"
	ActionLogHeightDec Action = "log_height_decrease"
	ActionLogHeightInc Action = "log_height_increase"
	ActionScrollLeft   Action = "scroll_left"
	ActionScrollRight  Action = "scroll_right"
	ActionToggleMouse  Action = "toggle_mouse"
)

type actionDef struct {
	action Action
	keys   []string
	help   string
}

// actionDefs is the default keymap in display order.
var actionDefs = []actionDef{
	{ActionQuit, []string{"q", "ctrl+c"}, "quit"},
	{ActionNextPanel, []string{"tab"}, "next panel"},
	{ActionPrevPanel, []string{"shift+tab"}, "previous panel"},
	{ActionUp, []string{"up", "k"}, "move up"},
	{ActionDown, []string{"down", "j"}, "move down"},
	{ActionFirst, []string{"home"}, "first"},
	{ActionLast, []string{"end"}, "last"},
	{ActionRunCommand, []string{"enter"}, "run command"},
	{ActionSortName, []string{"1"}, "sort by name"},
	{ActionSortState, []string{"2"}, "sort by state"},
	{ActionSortStatus, []string{"3"}, "sort by status"},
	{ActionSortCPU, []string{"4"}, "sort by cpu"},
	{ActionSortMemory, []string{"5"}, "sort by memory"},
	{ActionSortID, []string{"6"}, "sort by id"},
	{ActionSortImage, []string{"7"}, "sort by image"},
	{ActionSortRX, []string{"8"}, "sort by rx"},
	{ActionSortTX, []string{"9"}, "sort by tx"},
	{ActionSortReset, []string{"0"}, "clear sort"},
	{ActionExec, []string{"e"}, "exec shell"},
	{ActionSaveLogs, []string{"s"}, "save logs"},
	{ActionInspect, []string{"i"}, "inspect"},
	{ActionFilter, []string{"/"}, "filter"},
	{ActionHelp, []string{"h"}, "help"},
	{ActionClear, []string{"c", "esc"}, "clear error / close"},
	{ActionLogHeightDec, []string{"-"}, "shrink logs"},
	{ActionLogHeightInc, []string{"="}, "grow logs"},
	{ActionScrollLeft, []string{"left"}, "scroll left"},
	{ActionScrollRight, []string{"right"}, "scroll right"},
	{ActionToggleMouse, []string{"m"}, "toggle mouse"},
}

// MaxKeysPerAction is how many keys a single action may be bound to.
const MaxKeysPerAction = 2

// Actions returns every rebindable action in display order.
func Actions() []Action {
	out := make([]Action, len(actionDefs))
	for i, d := range actionDefs {
		out[i] = d.action
	}
	return out
}

// DefaultKeys returns the default keys for an action.
func DefaultKeys(a Action) []string {
	for _, d := range actionDefs {
		if d.action == a {
			return append([]string(nil), d.keys...)
		}
	}
	return nil
}

func isAction(name string) bool {
	for _, d := range actionDefs {
		if string(d.action) == name {
			return true
		}
	}
	return false
}

// Keymap holds the resolved key bindings. Built once by NewKeymap and
// threaded through to the dashboard.
type Keymap struct {
	bindings map[Action]key.Binding
}

// NewKeymap merges the config overrides onto the defaults and returns the
// resolved bindings. Unknown actions, too many keys and keys bound to more
// than one action are rejected.
func NewKeymap(overrides map[string][]string) (*Keymap, error) {
	resolved, err := resolveKeys(overrides)
	if err != nil {
		return nil, err
	}

	km := &Keymap{bindings: make(map[Action]key.Binding, len(actionDefs))}
	for _, d := range actionDefs {
		keys := resolved[d.action]
		km.bindings[d.action] = key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), d.help),
		)
	}
	return km, nil
}

func resolveKeys(overrides map[string][]string) (map[Action][]string, error) {
	resolved := make(map[Action][]string, len(actionDefs))
	for _, d := range actionDefs {
		resolved[d.action] = d.keys
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		keys := overrides[name]
		if !isAction(name) {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown keymap action '%s'", name),
				"See 'dockmon config init' for the list of actions.")
		}
		if len(keys) == 0 || len(keys) > MaxKeysPerAction {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Keymap action '%s' needs one or two keys, got %d", name, len(keys)),
				"Use a list like [\"x\", \"ctrl+x\"].")
		}
		for _, k := range keys {
			if strings.TrimSpace(k) == "" {
				return nil, errors.New(errors.ErrConfig,
					fmt.Sprintf("Keymap action '%s' has an empty key", name),
					"Remove the empty entry.")
			}
		}
		resolved[Action(name)] = keys
	}

	owner := make(map[string]Action)
	for _, d := range actionDefs {
		for _, k := range resolved[d.action] {
			if prev, ok := owner[k]; ok && prev != d.action {
				return nil, errors.New(errors.ErrConfig,
					fmt.Sprintf("Key '%s' is bound to both '%s' and '%s'", k, prev, d.action),
					"Rebind one of them in the keymap section.")
			}
			owner[k] = d.action
		}
	}

	return resolved, nil
}

// Binding returns the binding for an action.
func (k *Keymap) Binding(a Action) key.Binding {
	return k.bindings[a]
}

// Matches reports whether the pressed key triggers the action.
func (k *Keymap) Matches(pressed string, a Action) bool {
	b, ok := k.bindings[a]
	if !ok {
		return false
	}
	for _, bk := range b.Keys() {
		if bk == pressed {
			return true
		}
	}
	return false
}

// Lookup returns the action bound to the pressed key, if any.
func (k *Keymap) Lookup(pressed string) (Action, bool) {
	for _, d := range actionDefs {
		if k.Matches(pressed, d.action) {
			return d.action, true
		}
	}
	return "", false
}

// ShortHelp implements help.KeyMap for the footer.
func (k *Keymap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.bindings[ActionHelp],
		k.bindings[ActionNextPanel],
		k.bindings[ActionRunCommand],
		k.bindings[ActionFilter],
		k.bindings[ActionQuit],
	}
}

// FullHelp implements help.KeyMap for the help overlay.
func (k *Keymap) FullHelp() [][]key.Binding {
	group := func(actions ...Action) []key.Binding {
		out := make([]key.Binding, len(actions))
		for i, a := range actions {
			out[i] = k.bindings[a]
		}
		return out
	}
	return [][]key.Binding{
		group(ActionUp, ActionDown, ActionFirst, ActionLast, ActionNextPanel, ActionPrevPanel, ActionRunCommand),
		group(ActionSortName, ActionSortState, ActionSortStatus, ActionSortCPU, ActionSortMemory,
			ActionSortID, ActionSortImage, ActionSortRX, ActionSortTX, ActionSortReset),
		group(ActionExec, ActionSaveLogs, ActionInspect, ActionFilter, ActionLogHeightDec,
			ActionLogHeightInc, ActionScrollLeft, ActionScrollRight),
		group(ActionHelp, ActionClear, ActionToggleMouse, ActionQuit),
	}
}
