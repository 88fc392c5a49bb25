package main

import (
	"fmt"
	"io"
	"os"

	"github.com/xplshn/clex/pkg/cli"
	"github.com/xplshn/clex/pkg/config"
	"github.com/xplshn/clex/pkg/lexer"
	"github.com/xplshn/clex/pkg/report"
	"github.com/xplshn/clex/pkg/util"
)

const sampleProgram = `
if (x1 <= 32) {
    b = 10;
}
`

type source struct {
	name string
	text string
}

func main() {
	app := newApp(os.Stdout)
	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// newApp builds the clex command, printing tokens and tables to stdout.
func newApp(stdout io.Writer) *cli.App {
	app := cli.NewApp("clex")
	app.Synopsis = "[options] <input.mc> ..."
	app.Description = "A lexical analyzer for a small C-like language. Prints the token stream and the reserved word, identifier and literal tables."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/clex>"

	var (
		tokenStyle string
		profile    string
		flags      []string
		symbols    bool
		noSymbols  bool
		dumpJSON   bool
		sample     bool
		wall       bool
		pedantic   bool
	)

	fs := app.FlagSet
	fs.String(&tokenStyle, "tokens", "t", "tags", "Token output style: tags, table or none.", "style")
	fs.String(&profile, "profile", "p", "compat", "Lexer profile (compat, modern).", "profile")
	fs.List(&flags, "flag", "f", []string{}, "Apply a -W/-F flag by name (e.g. -f Wall).", "name")
	fs.Bool(&symbols, "symbols", "s", true, "Print the symbol tables after the tokens.")
	fs.Bool(&noSymbols, "no-symbols", "", false, "Print only the tokens.")
	fs.Bool(&dumpJSON, "json", "j", false, "Print a JSON dump of tokens, tables and errors.")
	fs.Bool(&sample, "sample", "", false, "Tokenize the built-in sample program.")
	fs.Bool(&wall, "Wall", "", false, "Enable all warnings.")
	fs.Bool(&pedantic, "pedantic", "", false, "Issue every warning the lexer knows about.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		// Profile first, explicit flags override it
		if err := cfg.ApplyProfile(profile); err != nil {
			util.Fatal("%v", err)
		}
		if wall {
			flags = append(flags, "Wall")
		}
		if pedantic {
			flags = append(flags, "pedantic")
		}
		cfg.ProcessFlags(flags)
		cfg.ApplyFlagGroups(warningFlags, featureFlags)

		style, err := report.ParseStyle(tokenStyle)
		if err != nil {
			util.Fatal("%v", err)
		}

		sources := readSources(inputFiles)
		if sample {
			sources = append(sources, source{name: "<sample>", text: sampleProgram})
		}
		if len(sources) == 0 {
			util.Fatal("no input files specified.")
		}

		records := make([]util.SourceFileRecord, len(sources))
		for i, src := range sources {
			records[i] = util.SourceFileRecord{Name: src.name, Content: []rune(src.text)}
		}
		rep := util.NewReporter(cfg, os.Stderr)
		rep.SetSourceFiles(records)

		var dumps []report.Dump
		for i, src := range sources {
			l := lexer.NewLexer(cfg, rep)
			l.FileIndex = i
			toks, errs := l.Tokenize(src.text)

			if dumpJSON {
				d := report.NewDump(src.text, toks, errs, l)
				d.File, d.Profile = src.name, cfg.ProfileName
				dumps = append(dumps, d)
				continue
			}

			if len(sources) > 1 {
				fmt.Fprintf(stdout, "==> %s <==\n", src.name)
			}
			if err := report.WriteTokens(stdout, toks, style); err != nil {
				return err
			}
			if symbols && !noSymbols {
				if err := report.WriteTables(stdout, l.Reserved(), l.Identifiers(), l.Literals()); err != nil {
					return err
				}
			}
		}

		if n, w := rep.ErrorCount(), rep.WarningCount(); n+w > 0 {
			util.Info("%d error(s), %d warning(s) in %d input(s)", n, w, len(sources))
		}
		if dumpJSON {
			return report.WriteJSON(stdout, dumps)
		}
		return nil
	}

	return app
}

func readSources(paths []string) []source {
	var sources []source
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			util.Fatal("could not read file '%s': %v", path, err)
		}
		sources = append(sources, source{name: path, text: string(content)})
	}
	return sources
}
