// Package details shows one item picked on the choice screen.
package details

import "github.com/jask/gomvi/mvi"

type ViewState struct {
	Title string `json:"title"`
}

// ViewModel has a fixed state and ignores events.
type ViewModel struct {
	*mvi.Base[ViewState, mvi.None, mvi.None]
}

var _ mvi.ViewModel[ViewState, mvi.None, mvi.None, mvi.None] = (*ViewModel)(nil)

// New returns the details of item id.
func New(id string, opts ...mvi.Option[ViewState]) (*ViewModel, error) {
	opts = append([]mvi.Option[ViewState]{
		mvi.WithName[ViewState]("details"),
		mvi.WithInitialState(ViewState{Title: "#" + id}),
	}, opts...)
	b, err := mvi.NewBase[ViewState, mvi.None, mvi.None](opts...)
	if err != nil {
		return nil, err
	}
	return &ViewModel{Base: b}, nil
}

func (vm *ViewModel) OnEvent(mvi.None) {}
