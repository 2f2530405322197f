package testrunner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	passColor  = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	skipColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgMagenta, color.Bold)
	dimColor   = color.New(color.Faint)
)

func (r Result) color() *color.Color {
	switch r {
	case Pass:
		return passColor
	case Fail:
		return failColor
	case Skip:
		return skipColor
	default:
		return errorColor
	}
}

// Report writes one line per script and a closing summary. Passing scripts
// are listed only when verbose is set. Colors follow color.NoColor.
func Report(w io.Writer, results []TestResult, summary Summary, verbose bool) {
	for _, r := range results {
		if r.Result == Pass && !verbose {
			continue
		}
		fmt.Fprintf(w, "%s %s", r.Result.color().Sprint(r.Result), r.Path)
		if r.Result == Pass {
			fmt.Fprint(w, dimColor.Sprintf(" (%d assertions, %s)", r.Assertions, r.Elapsed.Round(10*time.Microsecond)))
		}
		fmt.Fprintln(w)
		if r.Message != "" {
			for _, line := range strings.Split(r.Message, "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d scripts: %s, %s, %s, %s in %s\n",
		summary.Total,
		passColor.Sprintf("%d passed", summary.Passed),
		failColor.Sprintf("%d failed", summary.Failed),
		skipColor.Sprintf("%d skipped", summary.Skipped),
		errorColor.Sprintf("%d errors", summary.Errors),
		summary.Elapsed.Round(time.Millisecond),
	)
}
