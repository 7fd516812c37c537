package tps

import "github.com/nishikata-waifu/jsTPS/internal/notify"

// Option configures a Stack during creation.
type Option func(*Stack)

// WithMaxEntries caps the applied range. When the cap is exceeded the
// oldest applied transactions are evicted and become unundoable.
// Zero or negative means unlimited.
func WithMaxEntries(max int) Option {
	return func(s *Stack) {
		if max > 0 {
			s.maxEntries = max
		}
	}
}

// WithNotifier attaches a change notifier. The stack publishes a Change
// for every add, redo, undo, truncation, and clear.
func WithNotifier(n *notify.Notifier) Option {
	return func(s *Stack) {
		s.notifier = n
	}
}
