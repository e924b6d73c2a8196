package form

// Mode is either Creating or Editing. The set is closed: only this package
// implements it.
type Mode interface {
	isMode()
}

type Creating struct{}

type Editing struct {
	ID string
}

func (Creating) isMode() {}
func (Editing) isMode()  {}

// EditTarget returns the id being edited, if any.
func EditTarget(m Mode) (string, bool) {
	if e, ok := m.(Editing); ok {
		return e.ID, true
	}
	return "", false
}
