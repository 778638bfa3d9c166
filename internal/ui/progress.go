package ui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ProgressDialog is a modal progress bar fed by a conversion goroutine.
// Every widget update is marshalled onto the fyne thread.
type ProgressDialog struct {
	bar     *widget.ProgressBar
	dlg     dialog.Dialog
	current int
	once    sync.Once
}

func NewProgressDialog(win fyne.Window, sourceName string) *ProgressDialog {
	bar := widget.NewProgressBar()
	content := container.NewVBox(
		widget.NewLabel("Please wait... converting "+sourceName),
		bar,
	)
	p := &ProgressDialog{
		bar: bar,
		dlg: dialog.NewCustomWithoutButtons("Conversion in progress", content, win),
	}
	fyne.Do(p.dlg.Show)
	return p
}

func (p *ProgressDialog) SetUpperBound(n int) {
	max := float64(n)
	if n <= 0 {
		max = 1
	}
	fyne.Do(func() {
		p.bar.Max = max
		p.bar.SetValue(0)
	})
}

// Advance is called only from the conversion goroutine.
func (p *ProgressDialog) Advance(n int) {
	p.current += n
	v := float64(p.current)
	fyne.Do(func() {
		p.bar.SetValue(v)
	})
}

func (p *ProgressDialog) Dismiss() {
	p.once.Do(func() {
		fyne.Do(p.dlg.Hide)
	})
}
