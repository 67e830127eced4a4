package tuitest

import "time"

// keyBytes maps bubbletea key names to what a terminal sends for them.
var keyBytes = map[string]string{
	"enter":     "\r",
	"tab":       "\t",
	"shift+tab": "\x1b[Z",
	"esc":       "\x1b",
	"up":        "\x1b[A",
	"down":      "\x1b[B",
	"right":     "\x1b[C",
	"left":      "\x1b[D",
	"ctrl+c":    "\x03",
	"ctrl+d":    "\x04",
	"space":     " ",
}

// Key returns the input for a bubbletea key name. Anything not in the
// table is sent as typed, so "q" and "?" work too.
func Key(name string) []byte {
	if seq, ok := keyBytes[name]; ok {
		return []byte(seq)
	}
	return []byte(name)
}

// Press is a step sending one key once the screen shows until ("" sends at
// once).
func Press(name, until string) Step {
	return Step{Until: until, Input: Key(name)}
}

// Type returns one step per rune so each keypress reaches the program as
// its own message.
func Type(text string, delay time.Duration) []Step {
	steps := make([]Step, 0, len(text))
	for _, r := range text {
		steps = append(steps, Step{Delay: delay, Input: []byte(string(r))})
	}
	return steps
}
