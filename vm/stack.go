// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package vm

// Stack is a random access stack. Index 0 is the top.
type Stack struct {
	items []StackItem
}

// Len returns the number of items.
func (s *Stack) Len() int { return len(s.items) }

// Push pushes item on top.
func (s *Stack) Push(item StackItem) { s.items = append(s.items, item) }

// Pop removes and returns the top item.
func (s *Stack) Pop() (StackItem, error) {
	return s.Remove(0)
}

// Peek returns the n-th item from the top without removing it.
func (s *Stack) Peek(n int) (StackItem, error) {
	if n < 0 || n >= len(s.items) {
		return nil, ErrStackUnderflow
	}
	return s.items[len(s.items)-1-n], nil
}

// Remove removes and returns the n-th item from the top.
func (s *Stack) Remove(n int) (StackItem, error) {
	if n < 0 || n >= len(s.items) {
		return nil, ErrStackUnderflow
	}
	i := len(s.items) - 1 - n
	item := s.items[i]
	copy(s.items[i:], s.items[i+1:])
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return item, nil
}

// Insert inserts item so that it becomes the n-th item from the top.
func (s *Stack) Insert(n int, item StackItem) error {
	if n < 0 || n > len(s.items) {
		return ErrStackUnderflow
	}
	i := len(s.items) - n
	s.items = append(s.items, nil)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = item
	return nil
}

// Set replaces the n-th item from the top.
func (s *Stack) Set(n int, item StackItem) error {
	if n < 0 || n >= len(s.items) {
		return ErrStackUnderflow
	}
	s.items[len(s.items)-1-n] = item
	return nil
}

// Items returns a copy of the items, top first.
func (s *Stack) Items() []StackItem {
	out := make([]StackItem, len(s.items))
	for i := range s.items {
		out[i] = s.items[len(s.items)-1-i]
	}
	return out
}

// Clear removes all items.
func (s *Stack) Clear() {
	for i := range s.items {
		s.items[i] = nil
	}
	s.items = s.items[:0]
}
