package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/homestack-labs/homeql/internal/plan"
	"github.com/homestack-labs/homeql/internal/translate"
)

func runQueryREPL(cmd *cobra.Command) error {
	// The REPL bootstraps a missing database so first launch works without
	// an explicit init.
	cmdCtx, cleanup, err := NewCommandContext(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	format := resolveFormat(cmdCtx.Cfg.OutputFormat)

	historyFile := cmdCtx.Cfg.HistoryFile
	if !filepath.IsAbs(historyFile) {
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, historyFile)
		}
	}
	_ = os.MkdirAll(filepath.Dir(historyFile), 0o755)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "homeql> ",
		HistoryFile:     historyFile,
		AutoComplete:    newCatalogCompleter(cmdCtx),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "HomeQL console (database: %s, session: %s)\n",
		displayPath(cmdCtx.Cfg.DatabasePath), cmdCtx.Session.ID())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	replLoop(cmd, cmdCtx, rl, format)
	return nil
}

// lineSource is the REPL's input. *readline.Instance satisfies it; tests
// substitute a scripted source.
type lineSource interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

func replLoop(cmd *cobra.Command, cmdCtx *CommandContext, rl lineSource, format string) {
	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("homeql> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// A dot command or nl: phrase abandons any statement still being
		// accumulated, so the next statement starts clean.
		if multiLineBuffer.Len() > 0 &&
			(strings.HasPrefix(line, ".") || strings.HasPrefix(line, "nl:")) {
			multiLineBuffer.Reset()
			rl.SetPrompt("homeql> ")
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Discarded unfinished statement")
		}

		if strings.HasPrefix(line, ".") {
			if handled := handleDotCommand(cmd, cmdCtx, line, format); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// nl: prefix routes the line through the phrase translator.
		if phrase, ok := strings.CutPrefix(line, "nl:"); ok {
			handleTranslate(cmd, cmdCtx, strings.TrimSpace(phrase), format, false)
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			continue
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("   ...> ")
			continue
		}
		rl.SetPrompt("homeql> ")

		queryText := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		if err := executeAndRender(cmd, cmdCtx, queryText, format); err != nil && !errors.Is(err, errQueryRejected) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}
}

// handleTranslate translates a phrase, echoes the generated SQL, and runs it
// unless dryRun is set.
func handleTranslate(cmd *cobra.Command, cmdCtx *CommandContext, phrase, format string, dryRun bool) {
	queryText, intent, err := cmdCtx.Session.Translate(phrase)
	if err != nil {
		if errors.Is(err, translate.ErrNoMatch) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No matching phrase pattern: %q\n", phrase)
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Try keywords like 用户, 设备, 使用记录, 安防事件, 反馈, 房间 or user, device, usage, event, feedback")
			return
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "-- pattern %s\n%s\n", intent.PatternID, queryText)
	if dryRun {
		return
	}

	if err := executeAndRender(cmd, cmdCtx, queryText, format); err != nil && !errors.Is(err, errQueryRejected) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
}

func handleDotCommand(cmd *cobra.Command, cmdCtx *CommandContext, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)
		return true

	case ".tables":
		if err := renderCatalog(out, cmdCtx.Session.Catalog(), "", format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return true

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errOut, "Usage: .schema <table>")
			return true
		}
		if err := renderCatalog(out, cmdCtx.Session.Catalog(), parts[1], format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return true

	case ".plan":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errOut, "Usage: .plan <sql>")
			return true
		}
		queryText := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))
		steps, err := cmdCtx.Session.ExplainPlan(cmd.Context(), strings.TrimSuffix(queryText, ";"))
		if err != nil {
			if errors.Is(err, plan.ErrUnavailable) {
				_, _ = fmt.Fprintf(errOut, "Plan unavailable: %v\n", err)
			} else {
				_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			}
			return true
		}
		if err := renderPlan(out, steps, format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return true

	case ".reset":
		if err := cmdCtx.Session.Reset(cmd.Context()); err != nil {
			_, _ = fmt.Fprintf(errOut, "Reset failed: %v\n", err)
			return true
		}
		_, _ = fmt.Fprintf(out, "Database reset (session: %s)\n", cmdCtx.Session.ID())
		return true

	case ".clear":
		_, _ = fmt.Fprint(out, "\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List schema tables
  .schema <name>  Show columns and semantic types for a table
  .plan <sql>     Show the execution plan for a statement
  .reset          Drop all data and re-seed the database
  .clear          Clear the screen
  .quit / .exit   Exit the console

Input:
  SQL statements end with a semicolon (;)
  nl: <phrase>    Translate a natural language phrase to SQL and run it
                  e.g. nl: 查询所有在线设备
`
	_, _ = fmt.Fprintln(w, help)
}

// newCatalogCompleter builds a readline completer from the schema catalog.
func newCatalogCompleter(cmdCtx *CommandContext) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	cat := cmdCtx.Session.Catalog()
	tableItems := make([]readline.PrefixCompleterInterface, 0, cat.Len())
	for _, name := range cat.TableNames() {
		items = append(items, readline.PcItem(name))
		tableItems = append(tableItems, readline.PcItem(name))
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema", tableItems...),
		readline.PcItem(".plan"),
		readline.PcItem(".reset"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}

func displayPath(path string) string {
	if path == "" {
		return ":memory:"
	}
	return path
}
