package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
		wantArgs []string
		wantEnv  []string
	}{
		{
			name:     "plain executable",
			input:    "weston-terminal",
			wantPath: "weston-terminal",
		},
		{
			name:     "executable with arguments",
			input:    "/usr/bin/gedit --new-window notes.txt",
			wantPath: "/usr/bin/gedit",
			wantArgs: []string{"--new-window", "notes.txt"},
		},
		{
			name:     "environment prefix",
			input:    "GDK_BACKEND=wayland MOZ_ENABLE_WAYLAND=1 firefox",
			wantPath: "firefox",
			wantEnv:  []string{"GDK_BACKEND=wayland", "MOZ_ENABLE_WAYLAND=1"},
		},
		{
			name:     "environment prefix with arguments",
			input:    "FOO=bar app --flag",
			wantPath: "app",
			wantArgs: []string{"--flag"},
			wantEnv:  []string{"FOO=bar"},
		},
		{
			name:  "empty command",
			input: "",
		},
		{
			name:    "only environment words",
			input:   "FOO=bar BAZ=qux",
			wantEnv: []string{"FOO=bar", "BAZ=qux"},
		},
		{
			name:     "extra whitespace",
			input:    "  app   one  two ",
			wantPath: "app",
			wantArgs: []string{"one", "two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, args, env := parseCommand(tt.input)
			assert.Equal(t, tt.wantPath, path)
			if len(tt.wantArgs) == 0 {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
			if len(tt.wantEnv) == 0 {
				assert.Empty(t, env)
			} else {
				assert.Equal(t, tt.wantEnv, env)
			}
		})
	}
}

func TestLauncherActivateWithoutExecutable(t *testing.T) {
	l := &launcher{}
	// Must not panic or spawn anything.
	l.activate()
}
