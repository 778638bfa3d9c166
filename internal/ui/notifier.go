package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
)

const (
	msgSuccess          = "Success!"
	msgAlreadyConverted = "Video already converted!"
	msgFailed           = "Something went wrong! Aborting and cleaning."
)

// OutcomeMessage maps an outcome to the dialog title and text shown to the user.
func OutcomeMessage(o entity.Outcome) (title, message string) {
	switch o {
	case entity.OutcomeCompleted:
		return "Conversion finished", msgSuccess
	case entity.OutcomeAlreadyConverted:
		return "Nothing to do", msgAlreadyConverted
	default:
		return "Conversion failed", msgFailed
	}
}

// DialogNotifier shows one information dialog per finished conversion.
type DialogNotifier struct {
	win fyne.Window
}

func NewDialogNotifier(win fyne.Window) *DialogNotifier {
	return &DialogNotifier{win: win}
}

func (n *DialogNotifier) NotifyOutcome(_ context.Context, ex *entity.Extraction) {
	title, message := OutcomeMessage(ex.Outcome)
	fyne.Do(func() {
		dialog.ShowInformation(title, message, n.win)
	})
}
