// Package terminal implements a text terminal frontend for the emulator.
//
// The screen, the registers and a status line are displayed in separate views,
// the keypad is mapped to the left side of a QWERTY keyboard:
//
//	1 2 3 4        1 2 3 C
//	q w e r   ->   4 5 6 D
//	a s d f        7 8 9 E
//	z x c v        A 0 B F
package terminal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jroimartin/gocui"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/runner"
)

// Terminals only report key presses, a pressed key is released after this many frames.
const keyHoldFrames = 6

// beepFrames is the number of frames the beep indicator is shown.
const beepFrames = 15

const (
	screenView    = "screen"
	registersView = "registers"
	statusView    = "status"
)

var keyMap = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Compile-time check to ensure Terminal implements runner.Frontend.
var _ runner.Frontend = (*Terminal)(nil)

// Terminal is a gocui based frontend.
// Render, Keys and Beep are called by the runner while the key bindings
// are processed by the gocui main loop.
type Terminal struct {
	gui *gocui.Gui

	mu        sync.Mutex
	frame     runner.Frame
	keyFrames [chip8.KeyCount]int // remaining frames each key is held
	beep      int                 // remaining frames the beep indicator is shown

	done      chan struct{}
	closeOnce sync.Once
}

// New initializes the terminal and its key bindings.
func New() (*Terminal, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("creating terminal gui: %w", err)
	}

	t := &Terminal{
		gui:  g,
		done: make(chan struct{}),
	}
	g.SetManagerFunc(t.layout)

	if err := t.setKeybindings(); err != nil {
		g.Close()
		return nil, err
	}
	return t, nil
}

// Run processes terminal events until the user quits.
func (t *Terminal) Run() error {
	defer t.closeDone()

	if err := t.gui.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) {
		return fmt.Errorf("running terminal main loop: %w", err)
	}
	return nil
}

// Quit requests the main loop to stop.
func (t *Terminal) Quit() {
	t.gui.Update(func(*gocui.Gui) error {
		return gocui.ErrQuit
	})
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.closeDone()
	t.gui.Close()
}

// Done is closed when the user quits.
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

// Render stores the frame and schedules a redraw of all views.
func (t *Terminal) Render(frame runner.Frame) error {
	t.mu.Lock()
	t.frame = frame
	if t.beep > 0 {
		t.beep--
	}
	t.mu.Unlock()

	t.gui.Update(t.draw)
	return nil
}

// Keys returns the keypad state and ages the held keys by one frame.
func (t *Terminal) Keys() [chip8.KeyCount]bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	var keys [chip8.KeyCount]bool
	for i, frames := range t.keyFrames {
		if frames > 0 {
			keys[i] = true
			t.keyFrames[i]--
		}
	}
	return keys
}

// Beep shows the beep indicator.
func (t *Terminal) Beep() {
	t.mu.Lock()
	t.beep = beepFrames
	t.mu.Unlock()
}

func (t *Terminal) closeDone() {
	t.closeOnce.Do(func() {
		close(t.done)
	})
}

func (t *Terminal) setKeybindings() error {
	if err := t.gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return fmt.Errorf("setting quit key binding: %w", err)
	}

	for r, key := range keyMap {
		if err := t.gui.SetKeybinding("", r, gocui.ModNone, t.pressHandler(key)); err != nil {
			return fmt.Errorf("setting key binding for '%c': %w", r, err)
		}
	}
	return nil
}

func (t *Terminal) pressHandler(key uint8) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		t.press(key)
		return nil
	}
}

func (t *Terminal) press(key uint8) {
	t.mu.Lock()
	t.keyFrames[key] = keyHoldFrames
	t.mu.Unlock()
}

func (t *Terminal) layout(g *gocui.Gui) error {
	maxX, _ := g.Size()
	screenWidth := chip8.ScreenWidth + 1
	screenHeight := chip8.ScreenHeight/2 + 1

	if v, err := g.SetView(screenView, 0, 0, screenWidth, screenHeight); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "CHIP-8"
	}

	registersEnd := max(maxX-1, screenWidth+registersWidth)
	if v, err := g.SetView(registersView, screenWidth+1, 0, registersEnd, screenHeight); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "Registers"
	}

	if v, err := g.SetView(statusView, 0, screenHeight+1, registersEnd, screenHeight+3); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "Status"
	}
	return nil
}

// draw updates all views with the latest frame, it runs in the gocui main loop.
func (t *Terminal) draw(g *gocui.Gui) error {
	t.mu.Lock()
	frame := t.frame
	beep := t.beep > 0
	t.mu.Unlock()

	views := []struct {
		name    string
		content string
	}{
		{screenView, renderScreen(frame.Screen)},
		{registersView, formatRegisters(frame)},
		{statusView, formatStatus(frame, beep)},
	}

	for _, view := range views {
		v, err := g.View(view.name)
		if err != nil {
			return err
		}
		v.Clear()
		if _, err := fmt.Fprint(v, view.content); err != nil {
			return fmt.Errorf("writing view %s: %w", view.name, err)
		}
	}
	return nil
}

func quit(*gocui.Gui, *gocui.View) error {
	return gocui.ErrQuit
}
