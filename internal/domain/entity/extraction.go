package entity

type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeAlreadyConverted
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeAlreadyConverted:
		return "already_converted"
	default:
		return "failed"
	}
}

// Extraction is the single terminal result of one frame extraction run.
type Extraction struct {
	SourceName    string
	SourcePath    string
	OutputDir     string
	Outcome       Outcome
	TotalFrames   int
	FramesWritten int
	// RolledBack is set when a failed run removed the output directory it created.
	RolledBack bool
	Err        error
}

// SourceVideo is an entry of the source directory as shown to the user.
type SourceVideo struct {
	Name      string
	OutputDir string
	Converted bool
}
