package port

type ProgressSink interface {
	SetUpperBound(n int)
	Advance(n int)
}

// Dismisser is implemented by sinks backed by a visible indicator that must be
// closed once the run ends.
type Dismisser interface {
	Dismiss()
}

type NopProgress struct{}

func (NopProgress) SetUpperBound(int) {}
func (NopProgress) Advance(int)       {}
