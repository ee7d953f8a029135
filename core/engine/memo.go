package engine

import "sync"

// memo is a write-once cell for one derived value.
type memo[T any] struct {
	once sync.Once
	val  T
}

func (m *memo[T]) get(compute func() T) T {
	m.once.Do(func() {
		m.val = compute()
	})
	return m.val
}
