package tui

import "github.com/jask/gomvi/lifecycle"

// ScreenStack keeps the navigation history. Only the top screen is resumed;
// covered screens stay created so their effects wait until they return.
type ScreenStack struct {
	items []Screen
}

// Push covers the current top with screen and resumes screen.
func (s *ScreenStack) Push(screen Screen) {
	if screen == nil {
		return
	}
	if top := s.Top(); top != nil {
		top.Owner().MoveTo(lifecycle.Created)
	}
	s.items = append(s.items, screen)
	for _, p := range []lifecycle.Phase{lifecycle.Created, lifecycle.Started, lifecycle.Resumed} {
		screen.Owner().MoveTo(p)
	}
}

// Pop removes and returns the top screen and resumes the one below. The
// caller closes the returned screen.
func (s *ScreenStack) Pop() Screen {
	if len(s.items) == 0 {
		return nil
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	if top := s.Top(); top != nil {
		top.Owner().MoveTo(lifecycle.Started)
		top.Owner().MoveTo(lifecycle.Resumed)
	}
	return last
}

func (s ScreenStack) Top() Screen {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

func (s ScreenStack) Len() int {
	return len(s.items)
}

// find returns the screen with id.
func (s ScreenStack) find(id string) Screen {
	for _, sc := range s.items {
		if sc.ID() == id {
			return sc
		}
	}
	return nil
}
