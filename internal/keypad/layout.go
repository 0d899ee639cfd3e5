package keypad

// Layout maps physical keyboard characters to logical keypad keys.
type Layout map[rune]uint8

// DefaultLayout maps the left hand block of a QWERTY keyboard onto the
// hexadecimal keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var DefaultLayout = Layout{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Order is the display order of the keypad keys, row by row.
var Order = [Keys]uint8{
	0x1, 0x2, 0x3, 0xC,
	0x4, 0x5, 0x6, 0xD,
	0x7, 0x8, 0x9, 0xE,
	0xA, 0x0, 0xB, 0xF,
}

// Key returns the logical key for the given character. Upper case letters
// map to the same key as lower case ones.
func (l Layout) Key(ch rune) (uint8, bool) {
	if ch >= 'A' && ch <= 'Z' {
		ch += 'a' - 'A'
	}
	key, ok := l[ch]
	return key, ok
}
