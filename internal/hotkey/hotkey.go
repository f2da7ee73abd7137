// Package hotkey parses and dispatches key-combination strings like
// "ctrl+shift+space".
package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrEmpty is returned when the combo string has no key.
var ErrEmpty = errors.New("empty hotkey")

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"super":   "super",
	"cmd":     "super",
	"meta":    "super",
	"win":     "super",
}

// Combo is a parsed key combination.
type Combo struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Super bool
	Key   string
}

// Parse parses a combo string. Modifiers may come in any order and casing;
// the last token is the key.
func Parse(s string) (Combo, error) {
	var c Combo
	tokens := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return c, fmt.Errorf("%w: %q", ErrEmpty, s)
		}
		mod, isMod := modifierAliases[tok]
		if isMod && i < len(tokens)-1 {
			switch mod {
			case "ctrl":
				c.Ctrl = true
			case "alt":
				c.Alt = true
			case "shift":
				c.Shift = true
			case "super":
				c.Super = true
			}
			continue
		}
		if i != len(tokens)-1 {
			return c, fmt.Errorf("unknown modifier %q in %q", tok, s)
		}
		c.Key = tok
	}
	if c.Key == "" {
		return c, fmt.Errorf("%w: %q", ErrEmpty, s)
	}
	return c, nil
}

// String renders the combo in canonical order.
func (c Combo) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Super {
		parts = append(parts, "super")
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "+")
}

// Registry binds combos to callbacks. With debug enabled, bindings are
// recorded but never fire, so a stuck combo cannot get in the way while
// debugging.
type Registry struct {
	mu       sync.Mutex
	debug    bool
	bindings map[string]func()
}

// NewRegistry creates a registry. debug disables triggering.
func NewRegistry(debug bool) *Registry {
	return &Registry{
		debug:    debug,
		bindings: map[string]func(){},
	}
}

// Register parses the combo and binds fn to it, replacing any previous
// binding for the same combo.
func (r *Registry) Register(combo string, fn func()) (Combo, error) {
	c, err := Parse(combo)
	if err != nil {
		return c, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[c.String()] = fn
	return c, nil
}

// Unregister removes a binding. It reports whether the combo was bound.
func (r *Registry) Unregister(combo string) bool {
	c, err := Parse(combo)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bindings[c.String()]; !ok {
		return false
	}
	delete(r.bindings, c.String())
	return true
}

// Trigger fires the callback bound to combo. It reports whether a callback
// ran. In debug mode nothing fires.
func (r *Registry) Trigger(combo string) bool {
	c, err := Parse(combo)
	if err != nil {
		return false
	}
	r.mu.Lock()
	fn, ok := r.bindings[c.String()]
	debug := r.debug
	r.mu.Unlock()
	if !ok || debug {
		return false
	}
	fn()
	return true
}

// Bindings returns the bound combos in canonical form, sorted.
func (r *Registry) Bindings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.bindings))
	for k := range r.bindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
