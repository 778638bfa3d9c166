package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
)

// LineNotifier prints one line per finished conversion.
type LineNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewLineNotifier(out io.Writer) *LineNotifier {
	return &LineNotifier{out: out}
}

func (n *LineNotifier) NotifyOutcome(_ context.Context, ex *entity.Extraction) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch ex.Outcome {
	case entity.OutcomeCompleted:
		fmt.Fprintf(n.out, "%s: Success! %d frames in %s\n", ex.SourceName, ex.FramesWritten, ex.OutputDir)
	case entity.OutcomeAlreadyConverted:
		fmt.Fprintf(n.out, "%s: Video already converted!\n", ex.SourceName)
	default:
		fmt.Fprintf(n.out, "%s: Something went wrong! Aborting and cleaning. (%v)\n", ex.SourceName, ex.Err)
	}
}
