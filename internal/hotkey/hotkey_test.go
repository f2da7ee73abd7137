package hotkey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for combo, want := range map[string]string{
		"ctrl+shift+space": "ctrl+shift+space",
		"shift+ctrl+space": "ctrl+shift+space",
		"CTRL+SHIFT+S":     "ctrl+shift+s",
		"control+option+q": "ctrl+alt+q",
		"cmd+c":            "super+c",
		"meta+shift+f12":   "shift+super+f12",
		"enter":            "enter",
		" ctrl + a ":       "ctrl+a",
		// a trailing modifier token is the key itself
		"ctrl+shift": "ctrl+shift",
	} {
		t.Run(combo, func(t *testing.T) {
			c, err := Parse(combo)
			require.NoError(t, err)
			require.Equal(t, want, c.String())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, combo := range []string{
		"",
		"+",
		"ctrl+",
		"ctrl++s",
		"bogus+s",
	} {
		t.Run(combo, func(t *testing.T) {
			_, err := Parse(combo)
			require.Error(t, err)
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Run("register and trigger", func(t *testing.T) {
		reg := NewRegistry(false)
		var fired int
		_, err := reg.Register("ctrl+shift+space", func() { fired++ })
		require.NoError(t, err)

		require.True(t, reg.Trigger("shift+ctrl+space"))
		require.Equal(t, 1, fired)
	})

	t.Run("unregister", func(t *testing.T) {
		reg := NewRegistry(false)
		_, err := reg.Register("ctrl+s", func() {})
		require.NoError(t, err)

		require.True(t, reg.Unregister("ctrl+s"))
		require.False(t, reg.Unregister("ctrl+s"))
		require.False(t, reg.Trigger("ctrl+s"))
	})

	t.Run("replace binding", func(t *testing.T) {
		reg := NewRegistry(false)
		var got string
		_, err := reg.Register("ctrl+s", func() { got = "old" })
		require.NoError(t, err)
		_, err = reg.Register("ctrl+s", func() { got = "new" })
		require.NoError(t, err)

		require.True(t, reg.Trigger("ctrl+s"))
		require.Equal(t, "new", got)
		require.Len(t, reg.Bindings(), 1)
	})

	t.Run("debug mode records but never fires", func(t *testing.T) {
		reg := NewRegistry(true)
		var fired bool
		_, err := reg.Register("ctrl+shift+space", func() { fired = true })
		require.NoError(t, err)

		require.False(t, reg.Trigger("ctrl+shift+space"))
		require.False(t, fired)
		require.Equal(t, []string{"ctrl+shift+space"}, reg.Bindings())
	})

	t.Run("invalid combo", func(t *testing.T) {
		reg := NewRegistry(false)
		_, err := reg.Register("", func() {})
		require.ErrorIs(t, err, ErrEmpty)
	})
}
