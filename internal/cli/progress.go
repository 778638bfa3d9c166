package cli

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar renders conversion progress on a terminal.
type ProgressBar struct {
	out  io.Writer
	desc string
	bar  *progressbar.ProgressBar
}

func NewProgressBar(out io.Writer, sourceName string) *ProgressBar {
	return &ProgressBar{out: out, desc: sourceName}
}

// SetUpperBound creates the bar once the frame count is known.
func (p *ProgressBar) SetUpperBound(n int) {
	p.bar = progressbar.NewOptions(n,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(p.desc),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (p *ProgressBar) Advance(n int) {
	if p.bar != nil {
		_ = p.bar.Add(n)
	}
}

func (p *ProgressBar) Current() int {
	if p.bar == nil {
		return 0
	}
	return int(p.bar.State().CurrentNum)
}

func (p *ProgressBar) Dismiss() {
	if p.bar != nil {
		_ = p.bar.Exit()
		io.WriteString(p.out, "\n")
	}
}
