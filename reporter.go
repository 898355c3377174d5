package teamslog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// reporter writes the handler's own failures to a side channel.
type reporter struct {
	mu  sync.Mutex
	out io.Writer

	prefix *color.Color
	level  *color.Color
}

// newReporter creates a reporter writing to w. Colors are used only when w
// is a terminal.
func newReporter(w io.Writer) *reporter {
	r := &reporter{
		out:    w,
		prefix: color.New(color.FgHiBlack),
		level:  color.New(color.FgRed, color.Bold),
	}

	if !isTerminal(w) {
		r.prefix.DisableColor()
		r.level.DisableColor()
	} else {
		r.prefix.EnableColor()
		r.level.EnableColor()
	}

	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// report writes one failure line. Write errors are ignored.
func (r *reporter) report(levelName, what string, err error) {
	if r == nil || r.out == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "%s %s %s: %v\n",
		r.prefix.Sprint("teamslog:"),
		r.level.Sprint(levelName),
		what,
		err,
	)
}
