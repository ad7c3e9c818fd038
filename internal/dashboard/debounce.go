package dashboard

import "time"

// SearchDelay is how long the search box must be idle before reloading.
const SearchDelay = 300 * time.Millisecond

// Debouncer tags keystrokes so that only the last one in a burst fires.
// Touch is called on every keystroke and the returned tag is delivered back
// after SearchDelay (for example through tea.Tick); Fire reports whether
// that tag is still the latest. It is meant for a single-owner update loop.
type Debouncer struct {
	tag uint64
}

// Touch records a keystroke and returns its tag.
func (d *Debouncer) Touch() uint64 {
	d.tag++
	return d.tag
}

// Fire reports whether tag is the most recent keystroke.
func (d *Debouncer) Fire(tag uint64) bool {
	return tag == d.tag
}
