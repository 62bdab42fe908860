// Command sweetctl manages the sweet shop inventory from a terminal. The
// session token is kept in a small SQLite file so it survives between runs.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/erazemk/sweetshop/internal/client"
	"github.com/erazemk/sweetshop/internal/config"
	"github.com/erazemk/sweetshop/internal/db"
	"github.com/erazemk/sweetshop/internal/logging"
	"github.com/erazemk/sweetshop/internal/session"
	"github.com/erazemk/sweetshop/internal/store"
)

var (
	errNotLoggedIn = errors.New("not logged in, run 'sweetctl login' first")
	errNotAdmin    = errors.New("admin role required")
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	apiURL  string
	dbPath  string
	timeout time.Duration
	debug   bool

	db        *sql.DB
	provider  *session.Provider
	inventory *client.Inventory
	rl        *readline.Instance
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	a := &app{}
	if err := execute(a, newRootCmd(a, cfg)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app, cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "sweetctl",
		Short:         "Manage the sweet shop inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.ErrOrStderr())
		},
	}
	root.SetErrPrefix("error:")

	pf := root.PersistentFlags()
	pf.StringVarP(&a.apiURL, "api", "u", cfg.APIURL, "sweet shop API base URL")
	pf.StringVar(&a.dbPath, "db", defaultTokenDB(), "where the session token is stored")
	pf.DurationVarP(&a.timeout, "timeout", "t", cfg.APITimeout, "timeout for each API call")
	pf.BoolVar(&a.debug, "debug", cfg.Debug, "log at debug level")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newRestockCmd(a),
	)
	return root
}

// execute runs root, closes the token store and prints any error with the
// root error prefix.
func execute(a *app, root *cobra.Command) error {
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), root.ErrPrefix(), err)
	}
	return err
}

func defaultTokenDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sweetctl.sqlite3"
	}
	return filepath.Join(dir, "sweetshop", "sweetctl.sqlite3")
}

func (a *app) open(logOut io.Writer) error {
	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(logging.NewHandler(logOut, logOut, level))

	database, err := db.Open(a.dbPath)
	if err != nil {
		return err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return fmt.Errorf("preparing token store: %w", err)
	}

	storage := &store.TokenStorage{DB: database}
	c := client.New(a.apiURL)
	c.HTTP.Timeout = a.timeout

	a.db = database
	a.provider = session.NewProvider(storage, c, session.WithLogger(logger))
	a.inventory = client.NewInventory(c, storage)
	return nil
}

func (a *app) close() error {
	if a.rl != nil {
		a.rl.Close()
		a.rl = nil
	}
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// require turns a guard decision into an error for commands.
func require(d session.Decision) error {
	if d.Action == session.Allow {
		return nil
	}
	if d.Location == session.DashboardPath {
		return errNotAdmin
	}
	return errNotLoggedIn
}

func (a *app) requireSession() error {
	return require(session.Evaluate(a.provider.Snapshot()))
}

func (a *app) requireAdmin() error {
	return require(session.EvaluateAdmin(a.provider.Snapshot()))
}

// terminal returns the line reader used for prompts, opening it on first use.
// Prompts are written to stderr so stdout stays clean for piping.
func (a *app) terminal(cmd *cobra.Command) (*readline.Instance, error) {
	if a.rl != nil {
		return a.rl, nil
	}

	cfg := &readline.Config{
		Stdout:          cmd.ErrOrStderr(),
		Stderr:          cmd.ErrOrStderr(),
		HistoryLimit:    -1,
		InterruptPrompt: "^C",
	}
	if in := cmd.InOrStdin(); in != os.Stdin {
		// Not the process terminal, so there is no tty mode to switch.
		cfg.Stdin = io.NopCloser(in)
		cfg.FuncIsTerminal = func() bool { return false }
		cfg.FuncMakeRaw = func() error { return nil }
		cfg.FuncExitRaw = func() error { return nil }
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening terminal: %w", err)
	}
	a.rl = rl
	return rl, nil
}

// prompt reads one line after printing label.
func (a *app) prompt(cmd *cobra.Command, label string) (string, error) {
	rl, err := a.terminal(cmd)
	if err != nil {
		return "", err
	}
	rl.SetPrompt(label)
	line, err := rl.Readline()
	if err != nil {
		return "", promptError(err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads one line without echoing it.
func (a *app) readPassword(cmd *cobra.Command, label string) (string, error) {
	rl, err := a.terminal(cmd)
	if err != nil {
		return "", err
	}
	pw, err := rl.ReadPassword(label)
	if err != nil {
		return "", promptError(err)
	}
	return strings.TrimRight(string(pw), "\r\n"), nil
}

func promptError(err error) error {
	if errors.Is(err, readline.ErrInterrupt) {
		return errors.New("interrupted")
	}
	return fmt.Errorf("reading input: %w", err)
}
