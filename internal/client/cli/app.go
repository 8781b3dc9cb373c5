package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scubelic/llmwatcher/internal/client/client"
	"github.com/scubelic/llmwatcher/internal/client/config"
	"github.com/scubelic/llmwatcher/internal/client/flow"
	"github.com/scubelic/llmwatcher/internal/client/localdb"
	"github.com/scubelic/llmwatcher/internal/client/repositories/metadata"
	"github.com/scubelic/llmwatcher/internal/client/services"
	"github.com/scubelic/llmwatcher/internal/client/session"
	"github.com/scubelic/llmwatcher/internal/client/theme"
	"github.com/scubelic/llmwatcher/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	api     client.Client
	session *services.SessionManager
	flow    *flow.Flow
	printer *theme.Printer
	render  *renderer
	reader  *bufio.Reader
}

// NewApp opens the session database at c.DBPath and wires the backend
// client, session manager and credential flow.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := localdb.Open(ctx, c.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	name, err := theme.Parse(c.Theme)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	printer := theme.NewPrinter(os.Stdout, name, theme.ResolveColors())

	app, err := newApp(ctx, c, logger, metadata.NewSQLiteRepository(db), api, printer, os.Stdin)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.db = db
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, repo metadata.Repository,
	api client.Client, printer *theme.Printer, in io.Reader) (*App, error) {
	mgr, err := services.NewSessionManager(ctx, session.NewStore(repo), logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:  c,
		logger:  logger,
		api:     api,
		session: mgr,
		printer: printer,
		render:  newRenderer(printer),
		reader:  bufio.NewReader(in),
	}
	a.flow = flow.New(api, mgr,
		flow.WithCloseDelay(c.CloseDelay),
		flow.WithLogger(logger),
		flow.WithOnChange(func(v flow.View) {
			if v.State == flow.Authenticated && !v.Busy {
				if _, err := mgr.CheckOnboardingStatus(ctx); err != nil {
					logger.Warn(ctx, "refresh onboarding flag", "error", err)
				}
			}
			a.render.view(v, mgr.HasCompletedOnboarding())
		}),
	)
	a.render.session(mgr.Snapshot(), a.flow.State())
	mgr.OnChange(func(s session.Session) { a.render.session(s, a.flow.State()) })
	mgr.OnReset(func(context.Context) { a.flow.Reset() })
	return a, nil
}

// Run prints the banner and blocks in the REPL until the user exits or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()

	a.printer.Title("LLM Answer Watcher (type 'help' for commands)")
	a.render.view(a.flow.View(), a.session.HasCompletedOnboarding())

	lines := &lineReader{r: a.reader}
	runREPL(ctx, a, func() string { return a.printer.Prompt(a.state().String()) }, lines)

	if err := lines.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// lineReader feeds the REPL from the same buffered reader the input
// prompts use, so neither side swallows the other's lines.
type lineReader struct {
	r    *bufio.Reader
	line string
	err  error
}

func (l *lineReader) Scan() bool {
	if l.err != nil {
		return false
	}
	line, err := l.r.ReadString('\n')
	if err != nil {
		l.err = err
		if line == "" {
			return false
		}
	}
	l.line = strings.TrimRight(line, "\r\n")
	return true
}

func (l *lineReader) Text() string {
	return l.line
}

// Err returns the first non-EOF read error.
func (l *lineReader) Err() error {
	if errors.Is(l.err, io.EOF) {
		return nil
	}
	return l.err
}

// Shutdown stops pending timers and closes the session database.
func (a *App) Shutdown() error {
	a.flow.Stop()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *App) state() flow.State {
	return a.flow.State()
}
