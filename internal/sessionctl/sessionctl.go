// Package sessionctl talks to logind for session-level actions that the
// shell protocol does not cover.
package sessionctl

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	login1Dest    = "org.freedesktop.login1"
	sessionPath   = "/org/freedesktop/login1/session/auto"
	sessionIface  = "org.freedesktop.login1.Session"
)

// Logout asks logind to terminate the calling session. Used by the panel
// switcher's logout action.
func Logout() error {
	return call("Terminate")
}

// Lock asks logind to lock the calling session. Fallback path for
// compositors whose shell protocol predates the lock request.
func Lock() error {
	return call("Lock")
}

func call(method string) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(login1Dest, dbus.ObjectPath(sessionPath))
	if c := obj.Call(sessionIface+"."+method, 0); c.Err != nil {
		return fmt.Errorf("session %s failed: %w", method, c.Err)
	}
	return nil
}
