// REPL binary for interactively building queries and rendering them as
// debug pseudo-SQL.
//
// Configuration (flags, with env var fallbacks):
//
//	--engine postgres|mysql|sqlite   (QUARRY_ENGINE, default postgres)
//	--dsn <dsn>                      (DATABASE_URL, auto-connects if set)
//	--schema <file.yaml>             tables to register on start
//	--quote none|ansi|mysql          identifier quoting for 'show'
//	--verbose                        log builder events to stderr
//	-e <command>                     run commands and exit (repeatable)
//
// Usage:
//
//	go run ./cmd/repl --schema schema.yaml
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bawdo/quarry/internal/quoting"
)

const promptText = "quarry> "

type options struct {
	engine   string
	dsn      string
	schema   string
	quote    string
	verbose  bool
	commands []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "quarry",
		Short:        "Interactive shell for composing queries",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.engine, "engine", envOr("QUARRY_ENGINE", "postgres"), "database engine for connect (postgres, mysql, sqlite)")
	f.StringVar(&opts.dsn, "dsn", os.Getenv("DATABASE_URL"), "connect on start")
	f.StringVar(&opts.schema, "schema", "", "YAML schema file to load on start")
	f.StringVar(&opts.quote, "quote", "none", "identifier quoting for show (none, ansi, mysql)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log builder events")
	f.StringArrayVarP(&opts.commands, "exec", "e", nil, "run a command and exit (repeatable)")
	return cmd
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return strings.ToLower(v)
	}
	return def
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// newConfiguredSession applies the flags to a fresh session.
func newConfiguredSession(opts options, rl *readline.Instance, out, errOut io.Writer) (*Session, error) {
	if !isValidEngine(opts.engine) {
		return nil, fmt.Errorf("invalid engine %q", opts.engine)
	}
	q, err := quoting.ByName(opts.quote)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	sess := NewSession(opts.engine, rl, logger)
	sess.out = out
	sess.quote = q
	if opts.schema != "" {
		n, err := sess.loadSchema(opts.schema)
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		_, _ = fmt.Fprintf(errOut, "[Config] Loaded %d table(s) from %s\n", n, opts.schema)
	}
	if opts.dsn != "" {
		if err := sess.cmdConnect(opts.dsn); err != nil {
			_, _ = fmt.Fprintf(errOut, "  Warning: connect failed: %v\n", err)
		}
	}
	return sess, nil
}

func run(out, errOut io.Writer, opts options) error {
	if len(opts.commands) > 0 {
		sess, err := newConfiguredSession(opts, nil, out, errOut)
		if err != nil {
			return err
		}
		defer sess.close()
		for _, line := range opts.commands {
			if err := sess.Execute(line); err != nil {
				return fmt.Errorf("%s: %w", line, err)
			}
		}
		return nil
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          promptText,
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sess, err := newConfiguredSession(opts, rl, out, errOut)
	if err != nil {
		return err
	}
	defer sess.close()
	_ = rl.SetConfig(&readline.Config{
		Prompt:          promptText,
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		AutoComplete:    &replCompleter{sess: sess},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Quarry REPL. Type 'help' for commands, 'exit' to quit")
	_, _ = fmt.Fprintln(out)

	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if lower == "exit" || lower == "quit" {
			break
		}
		if err := sess.Execute(line); err != nil {
			_, _ = fmt.Fprintf(errOut, "  Error: %v\n", err)
		}
	}
	_, _ = fmt.Fprintln(out)
	return nil
}

// close releases the database connection and flushes the logger.
func (s *Session) close() {
	if s.intro != nil {
		_ = s.intro.Close()
		s.intro = nil
	}
	_ = s.logger.Sync()
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".quarry_history")
}
