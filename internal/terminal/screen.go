package terminal

import (
	"fmt"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
)

const (
	textRows  = display.Height / 2 // two framebuffer rows per text row
	logLines  = 8
	keyWidth  = 3
	keypadX   = display.Width + 4
	logPaneY  = textRows + 3
	fgDefault = termbox.ColorDefault
	bgDefault = termbox.ColorDefault
)

// halfBlock returns the character showing the given upper and lower pixel.
func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}

// packRow returns the characters of a text row, which combines the
// framebuffer rows 2*row and 2*row+1.
func packRow(frame *display.Frame, row int) []rune {
	line := make([]rune, display.Width)
	for x := range line {
		line[x] = halfBlock(frame.Pixel(x, 2*row), frame.Pixel(x, 2*row+1))
	}
	return line
}

// view is the content shown on the terminal.
type view struct {
	frame display.Frame
	mask  uint16
	logs  []string
}

// addLog appends a message to the log pane, keeping only the latest lines.
func (v *view) addLog(msg string) {
	v.logs = append(v.logs, msg)
	if len(v.logs) > logLines {
		v.logs = v.logs[len(v.logs)-logLines:]
	}
}

// keyLabel returns the label of a keypad key and whether it is pressed.
func keyLabel(key uint8, mask uint16) (string, bool) {
	return fmt.Sprintf(" %X ", key), mask&(1<<key) != 0
}

func (v *view) draw() error {
	if err := termbox.Clear(fgDefault, bgDefault); err != nil {
		return fmt.Errorf("clearing terminal: %w", err)
	}

	drawBox(0, 0, display.Width+2, textRows+2)
	for row := range textRows {
		for x, ch := range packRow(&v.frame, row) {
			termbox.SetCell(x+1, row+1, ch, fgDefault, bgDefault)
		}
	}

	drawBox(keypadX, 0, 4*keyWidth+2, 4+2)
	for i, key := range keypad.Order {
		label, pressed := keyLabel(key, v.mask)
		fg, bg := fgDefault, bgDefault
		if pressed {
			fg, bg = termbox.ColorBlack, termbox.ColorWhite
		}
		drawText(keypadX+1+(i%4)*keyWidth, 1+i/4, label, fg, bg)
	}

	for i, msg := range v.logs {
		drawText(0, logPaneY+i, msg, fgDefault, bgDefault)
	}

	if err := termbox.Flush(); err != nil {
		return fmt.Errorf("flushing terminal: %w", err)
	}
	return nil
}

func drawText(x, y int, text string, fg, bg termbox.Attribute) {
	for _, ch := range text {
		termbox.SetCell(x, y, ch, fg, bg)
		x++
	}
}

func drawBox(x, y, width, height int) {
	right, bottom := x+width-1, y+height-1
	for i := x + 1; i < right; i++ {
		termbox.SetCell(i, y, '─', fgDefault, bgDefault)
		termbox.SetCell(i, bottom, '─', fgDefault, bgDefault)
	}
	for j := y + 1; j < bottom; j++ {
		termbox.SetCell(x, j, '│', fgDefault, bgDefault)
		termbox.SetCell(right, j, '│', fgDefault, bgDefault)
	}
	termbox.SetCell(x, y, '┌', fgDefault, bgDefault)
	termbox.SetCell(right, y, '┐', fgDefault, bgDefault)
	termbox.SetCell(x, bottom, '└', fgDefault, bgDefault)
	termbox.SetCell(right, bottom, '┘', fgDefault, bgDefault)
}
