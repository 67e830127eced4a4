package clipboard

import "sync"

// Item is one clipboard write recorded by Memory.
type Item struct {
	Mime string
	Data []byte
}

// Memory is an in-process clipboard, used when the host clipboard is
// disabled and by tests.
type Memory struct {
	mu    sync.Mutex
	items []Item
	Err   error
}

// WriteText implements Writer.
func (m *Memory) WriteText(text string) error {
	return m.write("text/plain", []byte(text))
}

// WriteImage implements Writer.
func (m *Memory) WriteImage(mime string, data []byte) error {
	return m.write(mime, data)
}

func (m *Memory) write(mime string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.items = append(m.items, Item{Mime: mime, Data: append([]byte(nil), data...)})
	return nil
}

// Items returns every write so far, oldest first.
func (m *Memory) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Item(nil), m.items...)
}

// Last returns the most recent write.
func (m *Memory) Last() (Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return Item{}, false
	}
	return m.items[len(m.items)-1], true
}
