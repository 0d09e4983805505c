package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/classmap/internal/hierarchy"
	"github.com/mvp-joe/classmap/internal/signature"
)

// CLIProgressReporter implements hierarchy.BuildProgress and
// hierarchy.MapProgress with progress bars on stderr.
type CLIProgressReporter struct {
	quiet      bool
	out        io.Writer
	classBar   *progressbar.ProgressBar
	methodBar  *progressbar.ProgressBar
	totalPairs int
}

// NewCLIProgressReporter creates a new CLI progress reporter.
// Bars are suppressed when quiet is set or stderr is not a terminal.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet || !stderrIsTerminal(),
		out:   os.Stderr,
	}
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c *CLIProgressReporter) OnBuildStart(root signature.Signature) {
	if c.quiet {
		return
	}
	log.Printf("Walking subclasses of %s", root.ClassName())

	// The number of descendants is unknown until the walk ends.
	c.classBar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Discovering classes"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("classes/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnClassVisited(sig signature.Signature, visited int) {
	if c.quiet {
		return
	}
	if c.classBar != nil {
		c.classBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnBuildComplete(stats hierarchy.BuildStats, duration time.Duration) {
	if c.quiet {
		return
	}
	if c.classBar != nil {
		c.classBar.Finish()
		c.classBar = nil
	}
	fmt.Fprintf(c.out, "✓ Hierarchy built: %s classes, depth %d (took %.1fs)\n",
		formatNumber(stats.Visited), stats.MaxDepth, duration.Seconds())
	if stats.Missing > 0 || stats.CyclesSkipped > 0 || stats.Excluded > 0 {
		fmt.Fprintf(c.out, "  Truncated: %d  Cycles skipped: %d  Excluded: %d\n",
			stats.Missing, stats.CyclesSkipped, stats.Excluded)
	}
}

func (c *CLIProgressReporter) OnMappingStart(total int) {
	if c.quiet {
		return
	}
	c.totalPairs = 0
	c.methodBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Mapping overrides"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("methods/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnMethodMapped(method signature.Signature, matched int) {
	if c.quiet {
		return
	}
	c.totalPairs += matched
	if c.methodBar != nil {
		c.methodBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnMappingComplete(overriding int, duration time.Duration) {
	if c.quiet {
		return
	}
	if c.methodBar != nil {
		c.methodBar.Finish()
		c.methodBar = nil
	}
	fmt.Fprintf(c.out, "✓ Overrides mapped: %s overrides across %s classes (took %.1fs)\n",
		formatNumber(c.totalPairs), formatNumber(overriding), duration.Seconds())
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
