package steps

// Navigator is a bounded cursor over a built step sequence. It lives
// for the duration one specification is active; loading a new
// specification means building a new Navigator.
//
// All movement methods are silent no-ops when the target index is out
// of range.
type Navigator struct {
	steps []Step
	index int
}

// NewNavigator returns a cursor positioned on the first step.
func NewNavigator(steps []Step) *Navigator {
	return &Navigator{steps: steps}
}

// Len returns the number of steps.
func (n *Navigator) Len() int {
	return len(n.steps)
}

// Index returns the current cursor position.
func (n *Navigator) Index() int {
	return n.index
}

// Steps returns the underlying step sequence.
func (n *Navigator) Steps() []Step {
	return n.steps
}

// Current returns the step under the cursor, or false when the
// sequence is empty.
func (n *Navigator) Current() (Step, bool) {
	if len(n.steps) == 0 {
		return Step{}, false
	}
	return n.steps[n.index], true
}

// Next advances the cursor by one step.
func (n *Navigator) Next() {
	n.GoToStep(n.index + 1)
}

// Prev moves the cursor back by one step.
func (n *Navigator) Prev() {
	n.GoToStep(n.index - 1)
}

// First moves the cursor to the first step.
func (n *Navigator) First() {
	n.GoToStep(0)
}

// Last moves the cursor to the last step.
func (n *Navigator) Last() {
	n.GoToStep(len(n.steps) - 1)
}

// GoToStep moves the cursor to the given index. Out-of-range indexes
// are ignored.
func (n *Navigator) GoToStep(i int) {
	if i < 0 || i >= len(n.steps) {
		return
	}
	n.index = i
}

// AtEnd reports whether the cursor sits on the last step.
func (n *Navigator) AtEnd() bool {
	return len(n.steps) == 0 || n.index == len(n.steps)-1
}
