package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/xplshn/clex/pkg/config"
	"github.com/xplshn/clex/pkg/token"
)

const (
	cRed    = "\033[31m"
	cYellow = "\033[33m"
	cGreen  = "\033[32m"
	cNone   = "\033[0m"
)

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

// Reporter prints lexer diagnostics with the offending source line and a
// caret. Unlike Fatal it never exits; it only counts what it printed.
type Reporter struct {
	cfg      *config.Config
	w        io.Writer
	color    bool
	files    []SourceFileRecord
	lines    [][]int // rune offset of each line start, per file
	errors   int
	warnings int
}

// NewReporter writes to w, using colors only when w is a terminal.
func NewReporter(cfg *config.Config, w io.Writer) *Reporter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Reporter{cfg: cfg, w: w, color: color}
}

func (r *Reporter) SetColor(enabled bool) { r.color = enabled }

// SetSourceFiles stores the source of all inputs for rich error messages.
func (r *Reporter) SetSourceFiles(files []SourceFileRecord) {
	r.files = files
	r.lines = make([][]int, len(files))
	for i, f := range files {
		starts := []int{0}
		for j, ch := range f.Content {
			if ch == '\n' {
				starts = append(starts, j+1)
			}
		}
		r.lines[i] = starts
	}
}

func (r *Reporter) ErrorCount() int   { return r.errors }
func (r *Reporter) WarningCount() int { return r.warnings }

func (r *Reporter) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + cNone
}

// findFileAndLine converts a token to a file-specific location
func (r *Reporter) findFileAndLine(tok token.Token) (filename string, line, col int) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(r.files) {
		return "<input>", tok.Line, tok.Column
	}
	return r.files[tok.FileIndex].Name, tok.Line, tok.Column
}

// printErrorLine prints the source line and a caret indicating the error position
func (r *Reporter) printErrorLine(tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(r.files) || tok.Line < 1 || tok.Column < 1 {
		return
	}

	content := r.files[tok.FileIndex].Content
	starts := r.lines[tok.FileIndex]
	if tok.Line > len(starts) {
		return
	}
	lineStart, lineEnd := starts[tok.Line-1], len(content)
	if tok.Line < len(starts) {
		lineEnd = starts[tok.Line] - 1
	}

	fmt.Fprintf(r.w, "  %s\n", string(content[lineStart:lineEnd]))

	underline := "^"
	if tok.Len > 1 {
		underline += strings.Repeat("~", tok.Len-1)
	}
	fmt.Fprintf(r.w, "  %s%s\n", strings.Repeat(" ", tok.Column-1), r.paint(cGreen, underline))
}

// Error prints a formatted error message anchored at tok.
func (r *Reporter) Error(tok token.Token, format string, args ...any) {
	r.errors++
	filename, line, col := r.findFileAndLine(tok)
	fmt.Fprintf(r.w, "%s:%d:%d: %s ", filename, line, col, r.paint(cRed, "error:"))
	fmt.Fprintf(r.w, format, args...)
	fmt.Fprintln(r.w)
	r.printErrorLine(tok)
}

// Warn prints a formatted warning message if the corresponding warning is enabled.
func (r *Reporter) Warn(wt config.Warning, tok token.Token, format string, args ...any) {
	if !r.cfg.IsWarningEnabled(wt) {
		return
	}
	r.warnings++
	filename, line, col := r.findFileAndLine(tok)
	fmt.Fprintf(r.w, "%s:%d:%d: %s ", filename, line, col, r.paint(cYellow, "warning:"))
	fmt.Fprintf(r.w, format, args...)
	fmt.Fprintf(r.w, " [-W%s]\n", r.cfg.Warnings[wt].Name)
	r.printErrorLine(tok)
}

// Fatal prints a driver-level error and exits the program.
func Fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "clex: %s ", cRed+"error:"+cNone)
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

// Info prints a driver-level progress message.
func Info(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "clex: info: "+format+"\n", args...)
}
