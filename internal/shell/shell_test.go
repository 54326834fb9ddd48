package shell

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavren/waydesk/internal/config"
	"github.com/tavren/waydesk/internal/toolkit"
)

type fakeOutput uint32

func (o fakeOutput) ID() uint32 { return uint32(o) }

// fakeProto records every outbound protocol request in order.
type fakeProto struct {
	calls []string
}

func (p *fakeProto) record(format string, args ...interface{}) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *fakeProto) SetBackground(o OutputHandle, s toolkit.Surface) {
	p.record("set_background %d %d", o.ID(), s.ID())
}
func (p *fakeProto) SetPanel(o OutputHandle, s toolkit.Surface) {
	p.record("set_panel %d %d", o.ID(), s.ID())
}
func (p *fakeProto) SetLockSurface(s toolkit.Surface) { p.record("set_lock_surface %d", s.ID()) }
func (p *fakeProto) SetGrabSurface(s toolkit.Surface) { p.record("set_grab_surface %d", s.ID()) }
func (p *fakeProto) DesktopReady()                    { p.record("desktop_ready") }
func (p *fakeProto) Lock()                            { p.record("lock") }
func (p *fakeProto) Unlock()                          { p.record("unlock") }
func (p *fakeProto) SwitchUser(username string)       { p.record("switch_user %s", username) }

func (p *fakeProto) count(prefix string) int {
	n := 0
	for _, c := range p.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// fakeBuilder builds bare headless windows and counts builds per user.
type fakeBuilder struct {
	display     *toolkit.Display
	backgrounds map[string]int
	panels      map[string]int
	lastPair    [2]*toolkit.Window
}

func newFakeBuilder(d *toolkit.Display) *fakeBuilder {
	return &fakeBuilder{
		display:     d,
		backgrounds: make(map[string]int),
		panels:      make(map[string]int),
	}
}

func (b *fakeBuilder) BuildBackground(username string) (*toolkit.Window, error) {
	b.backgrounds[username]++
	w, err := b.display.NewWindow("background")
	if err != nil {
		return nil, err
	}
	w.AddWidget(nil)
	b.lastPair[0] = w
	return w, nil
}

func (b *fakeBuilder) BuildPanel(username string) (*toolkit.Window, error) {
	b.panels[username]++
	w, err := b.display.NewWindow("panel")
	if err != nil {
		return nil, err
	}
	w.AddWidget(nil)
	b.lastPair[1] = w
	return w, nil
}

type fixture struct {
	display *toolkit.Display
	backend *toolkit.HeadlessBackend
	proto   *fakeProto
	builder *fakeBuilder
	desktop *Desktop
	logouts int
}

func newFixture(t *testing.T, mutate func(*config.Config), opts ...func(*Options)) *fixture {
	t.Helper()
	backend := toolkit.NewHeadlessBackend()
	display := toolkit.New(backend)

	cfg := config.DefaultConfig
	if mutate != nil {
		mutate(&cfg)
	}

	f := &fixture{
		display: display,
		backend: backend,
		proto:   &fakeProto{},
		builder: newFakeBuilder(display),
	}
	o := Options{
		BindShell:  func(name, version uint32) Proto { return f.proto },
		BindOutput: func(name, version uint32) OutputHandle { return fakeOutput(name) },
		Users:      func() []string { return []string{"alice", "bob"} },
		Logout:     func() { f.logouts++ },
	}
	for _, fn := range opts {
		fn(&o)
	}
	f.desktop = New(display, &cfg, f.builder, o)
	return f
}

func (f *fixture) bindShell(version uint32) {
	f.desktop.GlobalAdded(1, "desktop_shell", version)
}

func (f *fixture) addOutput(name uint32) {
	f.desktop.GlobalAdded(name, "wl_output", 3)
}

// configurePair sizes the most recently built pair the way the compositor
// would after set_background and set_panel.
func (f *fixture) configurePair(width, height int) {
	f.desktop.Configure(0, f.builder.lastPair[0].Surface().ID(), width, height)
	f.desktop.Configure(0, f.builder.lastPair[1].Surface().ID(), width, height)
}

func TestVersionClamp(t *testing.T) {
	tests := []struct {
		name   string
		server uint32
		want   uint32
	}{
		{"older server", 1, 1},
		{"matching server", 2, 2},
		{"newer server", 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			var bound uint32
			f.desktop.opts.BindShell = func(name, version uint32) Proto {
				bound = version
				return f.proto
			}
			f.bindShell(tt.server)
			assert.Equal(t, tt.want, bound)
			assert.Equal(t, tt.want, f.desktop.Version())
		})
	}
}

func TestOutputBeforeShellIsInitializedOnceAtBind(t *testing.T) {
	f := newFixture(t, nil)

	f.addOutput(10)
	assert.Empty(t, f.proto.calls, "no chrome before the shell global binds")
	assert.Zero(t, f.builder.panels["Guest"])

	f.bindShell(2)
	assert.Equal(t, 1, f.builder.backgrounds["Guest"])
	assert.Equal(t, 1, f.builder.panels["Guest"])
	assert.Equal(t, 1, f.proto.count("set_background 10"))
	assert.Equal(t, 1, f.proto.count("set_panel 10"))
	assert.Equal(t, 1, f.proto.count("set_grab_surface"))
}

func TestOutputAfterShellIsInitializedImmediately(t *testing.T) {
	f := newFixture(t, nil)

	f.bindShell(2)
	f.addOutput(10)
	assert.Equal(t, 1, f.builder.panels["Guest"])
	assert.Equal(t, 1, f.proto.count("set_panel 10"))
}

func TestDuplicateOutputAnnouncementIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.addOutput(10)
	f.addOutput(10)
	assert.Equal(t, 1, f.builder.panels["Guest"])
	assert.Equal(t, 1, f.desktop.OutputCount())
}

func TestOutputRemovalDestroysAllCachedPairs(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.addOutput(10)

	// Build a second user's pair on the same output.
	f.desktop.UserSwitched("alice")
	require.Equal(t, 1, f.builder.panels["alice"])

	f.desktop.GlobalRemoved(10, "wl_output")
	f.display.Flush()

	assert.Zero(t, f.desktop.OutputCount())
	// Guest pair (2 surfaces) and alice pair (2 surfaces) all destroyed.
	assert.GreaterOrEqual(t, len(f.backend.Destroyed), 4)
}

func TestRemovalOfUnknownGlobalIsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.desktop.GlobalRemoved(99, "wl_output")
	f.desktop.GlobalRemoved(100, "")
	assert.Zero(t, f.desktop.OutputCount())
}

func TestUserSwitchReusesCachedPair(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.addOutput(10)

	f.desktop.UserSwitched("alice")
	f.desktop.UserSwitched("Guest")
	f.desktop.UserSwitched("alice")

	assert.Equal(t, 1, f.builder.panels["alice"], "alice's chrome is built once")
	assert.Equal(t, 1, f.builder.backgrounds["alice"])
	assert.Equal(t, 1, f.builder.panels["Guest"])
	// Every switch re-announces the active pair.
	assert.Equal(t, 2, f.proto.count("set_panel 10 "+surfaceIDOf(f, "alice")))
}

func surfaceIDOf(f *fixture, username string) string {
	o := f.desktop.outputs[10]
	return fmt.Sprintf("%d", o.pairs[username].panel.Surface().ID())
}

func TestUserSwitchDefersUnlockToNextTurn(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.addOutput(10)

	f.desktop.UserSwitched("alice")
	assert.Zero(t, f.proto.count("unlock"), "unlock waits for the next loop turn")

	f.display.Flush()
	assert.Equal(t, 1, f.proto.count("unlock"))

	f.display.Flush()
	assert.Equal(t, 1, f.proto.count("unlock"), "deferred unlock runs once")
}

func TestPanelConfigureForcesFixedHeight(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.addOutput(10)

	f.configurePair(1920, 1080)
	f.display.Flush()

	_, bgHeight := f.builder.lastPair[0].Size()
	panelWidth, panelHeight := f.builder.lastPair[1].Size()
	assert.Equal(t, 1080, bgHeight)
	assert.Equal(t, 1920, panelWidth)
	assert.Equal(t, PanelHeight, panelHeight)
}

func TestConfigureForUnknownSurfaceIsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.desktop.Configure(0, 9999, 100, 100)
	f.display.Flush()
	assert.Empty(t, f.backend.Presented)
}

func TestReadinessFiresOnceAfterAllChromePainted(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.addOutput(10)
	first := f.builder.lastPair
	f.addOutput(11)
	second := f.builder.lastPair

	f.desktop.Configure(0, first[0].Surface().ID(), 800, 600)
	f.desktop.Configure(0, first[1].Surface().ID(), 800, 600)
	f.display.Flush()
	assert.Zero(t, f.proto.count("desktop_ready"), "second output still unpainted")

	f.desktop.Configure(0, second[0].Surface().ID(), 800, 600)
	f.desktop.Configure(0, second[1].Surface().ID(), 800, 600)
	f.display.Flush()
	assert.Equal(t, 1, f.proto.count("desktop_ready"))

	// Further repaints never repeat the signal.
	first[0].ScheduleRedraw()
	f.display.Flush()
	assert.Equal(t, 1, f.proto.count("desktop_ready"))
}

func TestReadinessSuppressedOnVersion1(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(1)
	f.addOutput(10)
	f.configurePair(800, 600)
	f.display.Flush()
	assert.Zero(t, f.proto.count("desktop_ready"))
}

func TestReadinessWaitsForRepaintAfterResize(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.addOutput(10)
	pair := f.desktop.outputs[10].active
	require.NotNil(t, pair)
	bg := pair.background.Surface().ID()
	panel := pair.panel.Surface().ID()

	f.desktop.Configure(0, bg, 800, 600)
	f.display.Flush()
	assert.True(t, pair.paintedBackground)
	assert.Zero(t, f.proto.count("desktop_ready"))

	// The background is between sizes when the panel first draws, so its
	// old paint no longer counts toward readiness.
	f.desktop.Configure(0, bg, 0, 0)
	f.desktop.Configure(0, panel, 800, PanelHeight)
	f.display.Flush()
	assert.False(t, pair.paintedBackground)
	assert.True(t, pair.paintedPanel)
	assert.Zero(t, f.proto.count("desktop_ready"))

	f.desktop.Configure(0, bg, 1024, 768)
	f.display.Flush()
	assert.Equal(t, 1, f.proto.count("desktop_ready"))
}

func TestPrepareLockShowsOneDialog(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.addOutput(10)

	f.desktop.PrepareLock()
	f.desktop.PrepareLock()

	assert.True(t, f.desktop.Locked())
	assert.Equal(t, 1, f.proto.count("set_lock_surface"))
}

func TestPrepareLockWithLockingDisabledUnlocksImmediately(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Shell.Locking = false })
	f.bindShell(2)

	f.desktop.PrepareLock()

	assert.False(t, f.desktop.Locked())
	assert.Equal(t, 1, f.proto.count("unlock"))
	assert.Zero(t, f.proto.count("set_lock_surface"))
}

func TestRequestLockBeforeBindIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	f.desktop.RequestLock()
	assert.Empty(t, f.proto.calls)

	f.bindShell(2)
	f.desktop.RequestLock()
	assert.Equal(t, 1, f.proto.count("lock"))
}

func TestRequestLockSuppressedOnVersion1(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(1)
	f.desktop.RequestLock()
	assert.Zero(t, f.proto.count("lock"))
}

func typeString(f *fixture, s string) {
	for _, r := range s {
		f.desktop.unlock.key(toolkit.KeyEvent{Code: 100, Rune: r, Pressed: true})
	}
}

func TestUnlockDialogSubmitSwitchesUserOnce(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.addOutput(10)
	f.desktop.PrepareLock()
	require.True(t, f.desktop.Locked())

	dlg := f.desktop.unlock
	dlg.selectUser("alice")
	require.NotNil(t, dlg.prompt)

	typeString(f, "hunter2")
	dlg.key(toolkit.KeyEvent{Code: toolkit.KeyEnter, Pressed: true})
	dlg.key(toolkit.KeyEvent{Code: toolkit.KeyEnter, Pressed: true})

	assert.Equal(t, 1, f.proto.count("switch_user alice"))

	// The compositor answers; the deferred finish unlocks and tears down.
	f.desktop.UserSwitched("alice")
	f.display.Flush()
	assert.Equal(t, 1, f.proto.count("unlock"))
	assert.False(t, f.desktop.Locked())
	assert.Equal(t, "alice", f.desktop.CurrentUser())
}

func TestUnlockDialogRejectsWrongPassword(t *testing.T) {
	verify := func(username, password string) error {
		if password != "secret" {
			return errors.New("permission denied")
		}
		return nil
	}
	f := newFixture(t, nil, func(o *Options) { o.Verify = verify })
	f.bindShell(2)
	f.desktop.PrepareLock()

	dlg := f.desktop.unlock
	dlg.selectUser("bob")
	typeString(f, "wrong")
	dlg.key(toolkit.KeyEvent{Code: toolkit.KeyEnter, Pressed: true})

	assert.Zero(t, f.proto.count("switch_user"))
	assert.Empty(t, dlg.prompt.password, "a failed attempt clears the entry")
	assert.True(t, dlg.prompt.failed)

	typeString(f, "secret")
	dlg.key(toolkit.KeyEvent{Code: toolkit.KeyEnter, Pressed: true})
	assert.Equal(t, 1, f.proto.count("switch_user bob"))
}

func TestPasswordEditingRules(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.desktop.PrepareLock()
	dlg := f.desktop.unlock
	dlg.selectUser("alice")
	p := dlg.prompt

	// Backspace on an empty entry is a no-op.
	dlg.key(toolkit.KeyEvent{Code: toolkit.KeyBackspace, Pressed: true})
	assert.Empty(t, p.password)
	assert.Zero(t, p.cursor)

	typeString(f, "abc")
	assert.Equal(t, "abc", string(p.password))

	dlg.key(toolkit.KeyEvent{Code: toolkit.KeyBackspace, Pressed: true})
	assert.Equal(t, "ab", string(p.password))

	// Navigation keys are swallowed.
	dlg.key(toolkit.KeyEvent{Code: toolkit.KeyLeft, Pressed: true})
	dlg.key(toolkit.KeyEvent{Code: toolkit.KeyDelete, Pressed: true})
	dlg.key(toolkit.KeyEvent{Code: toolkit.KeyTab, Pressed: true})
	assert.Equal(t, "ab", string(p.password))

	// Non-printable runes are dropped; the entry caps at its limit.
	dlg.key(toolkit.KeyEvent{Code: 100, Rune: 0x07, Pressed: true})
	assert.Equal(t, "ab", string(p.password))
	for i := 0; i < 2*maxPasswordLen; i++ {
		dlg.key(toolkit.KeyEvent{Code: 100, Rune: 'x', Pressed: true})
	}
	assert.Len(t, p.password, maxPasswordLen)

	// Escape closes the prompt but keeps the dialog.
	dlg.key(toolkit.KeyEvent{Code: toolkit.KeyEsc, Pressed: true})
	assert.Nil(t, dlg.prompt)
	assert.True(t, f.desktop.Locked())
}

func TestSelectingAnotherUserReplacesPrompt(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.desktop.PrepareLock()
	dlg := f.desktop.unlock

	dlg.selectUser("alice")
	typeString(f, "abc")
	dlg.selectUser("bob")

	require.NotNil(t, dlg.prompt)
	assert.Equal(t, "bob", dlg.prompt.username)
	assert.Empty(t, dlg.prompt.password)

	// Re-selecting the same user keeps the prompt as is.
	typeString(f, "xy")
	dlg.selectUser("bob")
	assert.Equal(t, "xy", string(dlg.prompt.password))
}

func TestGrabCursorTranslation(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)

	f.desktop.GrabCursor(1)
	assert.Equal(t, toolkit.CursorWatch, f.desktop.grabCursor)
	f.desktop.GrabCursor(2)
	assert.Equal(t, toolkit.CursorDragging, f.desktop.grabCursor)
	f.desktop.GrabCursor(42)
	assert.Equal(t, toolkit.CursorLeftPtr, f.desktop.grabCursor)
}

func TestGrabSurfaceAnswersCursorQueries(t *testing.T) {
	f := newFixture(t, nil)
	f.bindShell(2)
	f.desktop.GrabCursor(1)

	// During a grab the compositor gives the grab surface pointer focus
	// at 0,0 and expects the cursor to change.
	grabID := f.desktop.grabWindow.Surface().ID()
	f.display.PointerEnter(grabID, 0, 0)

	assert.Equal(t, toolkit.CursorWatch, f.backend.Cursor)
	assert.Equal(t, toolkit.CursorWatch, f.display.PointerMotion(0, 0))
}

func TestLogoutRunsHook(t *testing.T) {
	f := newFixture(t, nil)
	f.desktop.Logout()
	assert.Equal(t, 1, f.logouts)
}
