package console

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar implements application.Progress on a terminal.
type ProgressBar struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func NewProgressBar(out io.Writer) *ProgressBar {
	if out == nil {
		out = os.Stderr
	}
	return &ProgressBar{out: out}
}

func (c *ProgressBar) Init(total int, description string) {
	c.bar = progressbar.NewOptions(
		total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (c *ProgressBar) Update(current int) {
	if c.bar != nil {
		_ = c.bar.Set(current)
	}
}

func (c *ProgressBar) Close() {
	if c.bar != nil {
		_ = c.bar.Finish()
		c.bar = nil
	}
}
