package history

// stack is a bounded LIFO of commands. Pushing past capacity evicts the oldest entry.
type stack struct {
	items []Command
	max   int
}

func newStack(max int) *stack {
	return &stack{max: max}
}

// push adds cmd on top and returns the evicted command, if any.
func (s *stack) push(cmd Command) (evicted Command) {
	s.items = append(s.items, cmd)
	if s.max > 0 && len(s.items) > s.max {
		evicted = s.items[0]
		s.items[0] = nil
		s.items = s.items[1:]
	}
	return evicted
}

func (s *stack) pop() (Command, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	last := len(s.items) - 1
	cmd := s.items[last]
	s.items[last] = nil
	s.items = s.items[:last]
	return cmd, true
}

func (s *stack) clear() {
	clear(s.items)
	s.items = s.items[:0]
}

func (s *stack) len() int {
	return len(s.items)
}

// entries lists the commands oldest first.
func (s *stack) entries() []Entry {
	out := make([]Entry, len(s.items))
	for i, cmd := range s.items {
		out[i] = Describe(cmd)
	}
	return out
}
