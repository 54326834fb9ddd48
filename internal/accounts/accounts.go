// Package accounts enumerates the system accounts that can appear in the
// unlock dialog's user list.
package accounts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const passwdPath = "/etc/passwd"

// Only accounts in this uid range are considered regular users.
const (
	minUID = 1000
	maxUID = 6000
)

// Shells that mark an account as non-interactive.
var disabledShells = map[string]struct{}{
	"/bin/false":    {},
	"/sbin/nologin": {},
}

// User is one system account entry.
type User struct {
	Name  string
	UID   int
	Shell string
}

// Selectable reports whether the account qualifies for the unlock dialog:
// a regular uid and a login shell that is not disabled.
func (u User) Selectable() bool {
	if u.UID < minUID || u.UID > maxUID {
		return false
	}
	_, disabled := disabledShells[u.Shell]
	return !disabled
}

// List returns the selectable accounts from /etc/passwd.
func List() ([]User, error) {
	f, err := os.Open(passwdPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", passwdPath, err)
	}
	defer f.Close()
	return parse(f)
}

// parse reads passwd-format lines and keeps the selectable entries.
func parse(r io.Reader) ([]User, error) {
	var users []User
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// name:passwd:uid:gid:gecos:home:shell
		fields := strings.Split(line, ":")
		if len(fields) < 7 {
			continue
		}
		uid, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		u := User{Name: fields[0], UID: uid, Shell: fields[6]}
		if u.Selectable() {
			users = append(users, u)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account database: %w", err)
	}
	return users, nil
}
