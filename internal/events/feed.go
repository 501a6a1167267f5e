package events

import (
	"sync"
	"time"
)

// FeedItem is a notification with the time it was published.
type FeedItem struct {
	Notification
	At time.Time `json:"at"`
}

// Feed keeps the most recent notifications of a topic so clients that
// poll can still show toasts.
type Feed struct {
	mu    sync.Mutex
	size  int
	items []FeedItem
	unsub func()
	now   func() time.Time
}

func NewFeed(topic *Topic[Notification], size int) *Feed {
	if size <= 0 {
		size = 50
	}
	f := &Feed{size: size, now: time.Now}
	f.unsub = topic.Subscribe(f.add)
	return f
}

func (f *Feed) add(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, FeedItem{Notification: n, At: f.now()})
	if over := len(f.items) - f.size; over > 0 {
		f.items = append([]FeedItem(nil), f.items[over:]...)
	}
}

// Since returns the notifications published after t, oldest first.
func (f *Feed) Since(t time.Time) []FeedItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FeedItem, 0, len(f.items))
	for _, it := range f.items {
		if it.At.After(t) {
			out = append(out, it)
		}
	}
	return out
}

func (f *Feed) Close() { f.unsub() }
