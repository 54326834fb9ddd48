package shell

import (
	"image"
	"strings"

	"github.com/tavren/waydesk/internal/logger"
	"github.com/tavren/waydesk/internal/render"
	"github.com/tavren/waydesk/internal/toolkit"
)

const (
	dialogWidth  = 520
	dialogHeight = 360

	entryHeight  = 28
	entryPadding = 8

	maxPasswordLen = 30
)

var (
	dialogBackground = render.Color(0xe0101418)
	dialogText       = render.Color(0xffd0d0d0)
	entryBackground  = render.Color(0xff20262c)
	entryHighlight   = render.Color(0xff3a506b)
	promptBackground = render.Color(0xff141a20)
)

// unlockDialog is the lock screen: a user list and, once a user is picked,
// a password prompt. One dialog exists at a time; prepare_lock_surface
// while it is up is a no-op.
type unlockDialog struct {
	desktop *Desktop
	window  *toolkit.Window

	entries []*userEntry
	prompt  *passwordPrompt

	// closing is set once a switch has been submitted; further input is
	// ignored until the compositor answers with user_switched.
	closing bool
}

type userEntry struct {
	username string
	widget   *toolkit.Widget
	hovered  bool
}

// passwordPrompt collects the password for one selected user. Only one
// prompt exists at a time; picking another user replaces it.
type passwordPrompt struct {
	username string
	password []rune
	cursor   int
	failed   bool
	widget   *toolkit.Widget
}

// PrepareLock handles the compositor's prepare_lock_surface event. With
// locking disabled in the config the session is released immediately, no
// matter what else is going on. Otherwise the dialog comes up once.
func (d *Desktop) PrepareLock() {
	if d.proto == nil {
		return
	}
	if !d.cfg.Shell.Locking {
		// Locking is disabled by policy: release immediately, taking any
		// dialog that is already up down with it.
		d.finishUnlock()
		return
	}
	if d.unlock != nil {
		return
	}
	d.showUnlockDialog()
}

// UserSwitched handles the compositor's user_switched event: the new user's
// chrome goes up on every output and the unlock finish runs on the next
// loop turn, after the chrome requests have been issued.
func (d *Desktop) UserSwitched(username string) {
	logger.Infof("Switched to user %q", username)
	d.currentUser = username
	for _, o := range d.outputs {
		d.bindSurfaces(o, username)
	}
	d.display.Defer(d.finishUnlock)
}

// Locked reports whether the unlock dialog is up.
func (d *Desktop) Locked() bool { return d.unlock != nil }

func (d *Desktop) showUnlockDialog() {
	w, err := d.display.NewWindow("unlock dialog")
	if err != nil {
		logger.Errorf("failed to create unlock dialog: %v", err)
		return
	}
	w.SetUserData(roleLockDialog)

	dlg := &unlockDialog{desktop: d, window: w}
	root := w.AddWidget(dlg)
	root.SetRedrawHandler(dlg.redraw)
	root.SetResizeHandler(dlg.layout)
	w.SetKeyHandler(dlg.key)

	for _, username := range dlg.usernames() {
		entry := &userEntry{username: username}
		entry.widget = root.AddWidget(entry)
		entry.widget.SetRedrawHandler(dlg.redrawEntry)
		entry.widget.SetEnterHandler(func(wd *toolkit.Widget, x, y int) toolkit.Cursor {
			wd.Data().(*userEntry).hovered = true
			wd.ScheduleRedraw()
			return toolkit.CursorLeftPtr
		})
		entry.widget.SetLeaveHandler(func(wd *toolkit.Widget) {
			wd.Data().(*userEntry).hovered = false
			wd.ScheduleRedraw()
		})
		entry.widget.SetButtonHandler(func(wd *toolkit.Widget, button uint32, state toolkit.ButtonState) {
			if button == toolkit.BtnLeft && state == toolkit.ButtonReleased {
				dlg.selectUser(wd.Data().(*userEntry).username)
			}
		})
		dlg.entries = append(dlg.entries, entry)
	}

	d.unlock = dlg
	d.proto.SetLockSurface(w.Surface())
	w.ScheduleResize(dialogWidth, dialogHeight)
}

// finishUnlock releases the compositor lock and tears the dialog down. It
// runs as a deferred task and also on the no-dialog path, so both fields
// are guarded.
func (d *Desktop) finishUnlock() {
	if d.proto != nil {
		d.proto.Unlock()
	}
	if d.unlock != nil {
		d.unlock.window.Destroy()
		d.unlock = nil
	}
}

func (dlg *unlockDialog) usernames() []string {
	var names []string
	if dlg.desktop.opts.Users != nil {
		names = dlg.desktop.opts.Users()
	}
	for _, n := range names {
		if n == dlg.desktop.currentUser {
			return names
		}
	}
	return append([]string{dlg.desktop.currentUser}, names...)
}

func (dlg *unlockDialog) layout(root *toolkit.Widget, width, height int) {
	y := 48
	for _, e := range dlg.entries {
		e.widget.SetAllocation(entryPadding, y, width-2*entryPadding, entryHeight)
		y += entryHeight + entryPadding
	}
	if dlg.prompt != nil {
		dlg.prompt.widget.SetAllocation(entryPadding, height-64, width-2*entryPadding, 48)
	}
}

func (dlg *unlockDialog) redraw(root *toolkit.Widget, img *image.RGBA) {
	render.Fill(img, dialogBackground)
	render.DrawText(img, entryPadding, 24, "Session locked. Select a user to continue.", dialogText)
}

func (dlg *unlockDialog) redrawEntry(wd *toolkit.Widget, img *image.RGBA) {
	e := wd.Data().(*userEntry)
	bg := entryBackground
	if e.hovered {
		bg = entryHighlight
	}
	r := wd.Allocation()
	render.FillRect(img, r, bg)
	label := e.username
	if e.username == dlg.desktop.currentUser {
		label += " (current)"
	}
	render.DrawText(img, r.Min.X+entryPadding, r.Min.Y+19, label, dialogText)
}

// selectUser opens the password prompt for one user, replacing any prompt
// already up.
func (dlg *unlockDialog) selectUser(username string) {
	if dlg.closing {
		return
	}
	if dlg.prompt != nil {
		if dlg.prompt.username == username {
			return
		}
		dlg.prompt.widget.Destroy()
		dlg.prompt = nil
	}
	p := &passwordPrompt{username: username}
	p.widget = dlg.window.Root().AddWidget(p)
	p.widget.SetRedrawHandler(dlg.redrawPrompt)
	dlg.prompt = p

	width, height := dlg.window.Size()
	p.widget.SetAllocation(entryPadding, height-64, width-2*entryPadding, 48)
	dlg.window.ScheduleRedraw()
}

func (dlg *unlockDialog) redrawPrompt(wd *toolkit.Widget, img *image.RGBA) {
	p := wd.Data().(*passwordPrompt)
	r := wd.Allocation()
	render.FillRect(img, r, promptBackground)
	render.DrawText(img, r.Min.X+entryPadding, r.Min.Y+18, "Password for "+p.username+":", dialogText)
	dots := strings.Repeat("*", len(p.password))
	render.DrawText(img, r.Min.X+entryPadding, r.Min.Y+38, dots, dialogText)
	if p.failed {
		render.DrawText(img, r.Min.X+200, r.Min.Y+18, "authentication failed", dialogText)
	}
}

// key handles all keyboard input while the lock dialog is up.
func (dlg *unlockDialog) key(ev toolkit.KeyEvent) {
	if !ev.Pressed || dlg.closing {
		return
	}
	p := dlg.prompt
	if p == nil {
		return
	}

	switch ev.Code {
	case toolkit.KeyEsc:
		p.widget.Destroy()
		dlg.prompt = nil
		dlg.window.ScheduleRedraw()
	case toolkit.KeyEnter, toolkit.KeyKPEnter:
		dlg.submit(p)
	case toolkit.KeyBackspace:
		if p.cursor > 0 {
			p.password = p.password[:p.cursor-1]
			p.cursor--
			dlg.window.ScheduleRedraw()
		}
	case toolkit.KeyTab, toolkit.KeyLeft, toolkit.KeyRight, toolkit.KeyDelete:
		// Single-line password entry; navigation keys are swallowed.
	default:
		if ev.Rune >= 0x20 && ev.Rune <= 0x7e && len(p.password) < maxPasswordLen {
			p.password = append(p.password, ev.Rune)
			p.cursor++
			dlg.window.ScheduleRedraw()
		}
	}
}

// submit checks the password and asks the compositor to switch. closing
// blocks a second Enter from racing a second switch_user before the
// compositor answers.
func (dlg *unlockDialog) submit(p *passwordPrompt) {
	d := dlg.desktop
	if d.opts.Verify != nil {
		if err := d.opts.Verify(p.username, string(p.password)); err != nil {
			logger.Warnf("authentication failed for %q: %v", p.username, err)
			p.password = p.password[:0]
			p.cursor = 0
			p.failed = true
			dlg.window.ScheduleRedraw()
			return
		}
	}
	dlg.closing = true
	d.proto.SwitchUser(p.username)
	p.widget.Destroy()
	dlg.prompt = nil
	dlg.window.ScheduleRedraw()
}
