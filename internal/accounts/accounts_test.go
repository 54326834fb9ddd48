package accounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	const passwd = `root:x:0:0:root:/root:/bin/bash
daemon:x:1:1:daemon:/usr/sbin:/usr/sbin/nologin
alice:x:1000:1000:Alice:/home/alice:/bin/bash
bob:x:1001:1001:Bob:/home/bob:/bin/zsh
service:x:1002:1002::/srv:/bin/false
legacy:x:1003:1003::/home/legacy:/sbin/nologin
sysacct:x:6001:6001::/var/lib/sys:/bin/bash

# comment line
broken:x:notanumber:0::/:/bin/sh
short:x:42
`

	users, err := parse(strings.NewReader(passwd))
	require.NoError(t, err)

	var names []string
	for _, u := range users {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"alice", "bob"}, names)
}

func TestSelectable(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{"regular user", User{Name: "alice", UID: 1000, Shell: "/bin/bash"}, true},
		{"upper bound", User{Name: "edge", UID: 6000, Shell: "/bin/sh"}, true},
		{"root", User{Name: "root", UID: 0, Shell: "/bin/bash"}, false},
		{"above range", User{Name: "sys", UID: 6001, Shell: "/bin/bash"}, false},
		{"false shell", User{Name: "svc", UID: 1500, Shell: "/bin/false"}, false},
		{"nologin shell", User{Name: "old", UID: 1500, Shell: "/sbin/nologin"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.Selectable())
		})
	}
}
