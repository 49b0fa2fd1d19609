// Package output renders search results for the terminal.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/dshills/chunkgrep/internal/config"
	"github.com/dshills/chunkgrep/pkg/types"
)

// Options controls how matches are rendered
type Options struct {
	// Action is config.ActionPrint, ActionFile or ActionBoolean
	Action string

	// Color enables path and match highlighting
	Color bool

	// OmitPath prints line:content instead of path:line:content, used when
	// the root is a single file
	OmitPath bool

	// Pattern and IgnoreCase drive match highlighting
	Pattern    string
	IgnoreCase bool
}

// Printer is an aggregator.Sink writing matches to out and notices to errOut
type Printer struct {
	mu     sync.Mutex
	out    *bufio.Writer
	errOut io.Writer
	opts   Options

	pathColor  *color.Color
	lineColor  *color.Color
	matchColor *color.Color
	warnColor  *color.Color

	lastPath string
	found    bool
	err      error
}

// New creates a Printer
func New(out, errOut io.Writer, opts Options) *Printer {
	if opts.Action == "" {
		opts.Action = config.ActionPrint
	}

	p := &Printer{
		out:        bufio.NewWriter(out),
		errOut:     errOut,
		opts:       opts,
		pathColor:  color.New(color.FgMagenta),
		lineColor:  color.New(color.FgGreen),
		matchColor: color.New(color.FgRed, color.Bold),
		warnColor:  color.New(color.FgYellow),
	}

	for _, c := range []*color.Color{p.pathColor, p.lineColor, p.matchColor, p.warnColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

// UseColor resolves a color mode against the file results are written to
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if f == nil || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Match implements aggregator.Sink
func (p *Printer) Match(rec types.MatchRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.found = true

	switch p.opts.Action {
	case config.ActionBoolean:
		return
	case config.ActionFile:
		if rec.Path == p.lastPath {
			return
		}
		p.lastPath = rec.Path
		p.write(p.pathColor.Sprint(rec.Path) + "\n")
		return
	}

	var b strings.Builder
	if !p.opts.OmitPath {
		b.WriteString(p.pathColor.Sprint(rec.Path))
		b.WriteByte(':')
	}
	b.WriteString(p.lineColor.Sprint(rec.LineNumber))
	b.WriteByte(':')
	b.WriteString(p.highlight(rec.Line))
	b.WriteByte('\n')
	p.write(b.String())
}

// Notice implements aggregator.Sink
func (p *Printer) Notice(n types.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Keep stdout and stderr interleaved in result order on a terminal
	p.flush()
	fmt.Fprintln(p.errOut, p.warnColor.Sprint("chunkgrep: warning: ")+n.String())
}

// Finish writes the boolean answer when that action is selected and flushes
// buffered output. It returns the first write error.
func (p *Printer) Finish() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opts.Action == config.ActionBoolean {
		p.write(fmt.Sprintf("%t\n", p.found))
	}
	p.flush()
	return p.err
}

// Flush writes buffered matches without the boolean answer, for runs that
// failed or were interrupted. It returns the first write error.
func (p *Printer) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.flush()
	return p.err
}

// Found reports whether any match was seen
func (p *Printer) Found() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.found
}

// Summary writes a one-line run summary to the error writer
func (p *Printer) Summary(s types.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.flush()
	fmt.Fprintf(p.errOut, "%s matches in %s files (%s scanned, %s skipped), %s in %s [%s]\n",
		humanize.Comma(int64(s.Matches)),
		humanize.Comma(int64(s.FilesMatched)),
		humanize.Comma(int64(s.FilesScanned)),
		humanize.Comma(int64(s.FilesSkipped)),
		humanize.Bytes(uint64(s.Bytes)),
		s.Duration.Round(time.Millisecond),
		s.Status)
}

func (p *Printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = p.out.WriteString(s)
}

func (p *Printer) flush() {
	if p.err != nil {
		return
	}
	p.err = p.out.Flush()
}

// highlight colors every occurrence of the pattern in line. Case-insensitive
// highlighting needs byte positions that survive folding, so it is limited
// to ASCII lines; other lines are printed plain.
func (p *Printer) highlight(line string) string {
	if !p.opts.Color || p.opts.Pattern == "" {
		return line
	}

	haystack, needle := line, p.opts.Pattern
	if p.opts.IgnoreCase {
		if !isASCII(line) || !isASCII(needle) {
			return line
		}
		haystack, needle = strings.ToLower(line), strings.ToLower(needle)
	}

	var b strings.Builder
	rest := 0
	for {
		i := strings.Index(haystack[rest:], needle)
		if i < 0 {
			break
		}
		start := rest + i
		end := start + len(needle)
		b.WriteString(line[rest:start])
		b.WriteString(p.matchColor.Sprint(line[start:end]))
		rest = end
	}
	b.WriteString(line[rest:])
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
