package termio

import (
	"errors"
	"io"
	"os"

	"golang.org/x/term"
)

// ESC is the escape code.
const ESC uint16 = 0x1b

// TAB indicates the horizontal tab
const TAB uint16 = 0x09

// CARRIAGE_RETURN indicates "enter"
const CARRIAGE_RETURN uint16 = 0x0D

// BACKSPACE is the backspace
const BACKSPACE uint16 = 0x08

// DEL is the delete key
const DEL uint16 = 0x7f

// CURSOR_UP (up arrow)
const CURSOR_UP uint16 = 0x5b41

// CURSOR_DOWN (down arrow)
const CURSOR_DOWN uint16 = 0x5b42

// CURSOR_LEFT (left arrow)
const CURSOR_LEFT uint16 = 0x5b44

// CURSOR_RIGHT (right arrow)
const CURSOR_RIGHT uint16 = 0x5b43

// UNKNOWN is a fall-back for unknown escape sequences
const UNKNOWN uint16 = 0x5bff

// Terminal provides a minimal line-oriented wrapper around a raw terminal,
// used by the interactive "explore" command to read register names and print
// coloured known-bits reports without pulling in a full readline library.
type Terminal struct {
	// file descriptor for output.
	fd int
	// Underlying terminal
	xterm *term.Terminal
	// Stores original state of terminal so this can be restored.
	state *term.State
}

// NewTerminal constructs a new terminal attached to stdin/stdout.  Returns an
// error if stdout is not connected to an actual terminal device.
func NewTerminal() (*Terminal, error) {
	fd := int(os.Stdout.Fd())
	//
	if !term.IsTerminal(fd) {
		return nil, errors.New("invalid terminal")
	}
	// Move terminal into raw mode
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	// Construct "screen"
	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	// Grab terminal screen
	xterm := term.NewTerminal(screen, "mirkb> ")
	//
	return &Terminal{fd, xterm, state}, nil
}

// ReadLine reads a single line of input, applying the usual line-editing
// keys (backspace, cursor movement, etc).
func (t *Terminal) ReadLine() (string, error) {
	return t.xterm.ReadLine()
}

// Write a formatted fragment of text straight to the terminal.
func (t *Terminal) Write(text FormattedText) error {
	_, err := t.xterm.Write(text.Bytes())
	return err
}

// GetSize returns the dimensions of the terminal.
func (t *Terminal) GetSize() (uint, uint) {
	w, h, err := term.GetSize(t.fd)
	// Sanity check for now
	if err != nil {
		panic(err)
	}
	//
	return uint(w), uint(h)
}

// WriteWrapped writes a sequence of fragments to the terminal, breaking the
// line at the terminal's current column width rather than letting the
// caller's raw escape sequence wrap however the remote terminal sees fit.  A
// fragment straddling the wrap column is split with Clip so its colouring
// survives the break.
func (t *Terminal) WriteWrapped(frags []FormattedText) error {
	width, _ := t.GetSize()
	//
	if width == 0 {
		width = 80
	}
	//
	var col uint
	//
	for _, frag := range frags {
		remaining := frag
		//
		for remaining.Len() > 0 {
			if col == width {
				if err := t.Write(NewText("\r\n")); err != nil {
					return err
				}
				//
				col = 0
			}
			//
			n := width - col
			if n > remaining.Len() {
				n = remaining.Len()
			}
			//
			if err := t.Write(remaining.Clip(0, n)); err != nil {
				return err
			}
			//
			remaining = remaining.Clip(n, remaining.Len())
			col += n
		}
	}
	//
	return nil
}

// Restore terminal to its original state.
func (t *Terminal) Restore() error {
	return term.Restore(t.fd, t.state)
}
