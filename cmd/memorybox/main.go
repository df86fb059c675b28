package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/memorybox/notification-center/internal/api"
	"github.com/memorybox/notification-center/internal/app"
	"github.com/memorybox/notification-center/internal/credential"
	"github.com/memorybox/notification-center/internal/logging"
	"github.com/memorybox/notification-center/internal/model"
	"github.com/memorybox/notification-center/internal/notify"
	"github.com/memorybox/notification-center/internal/store"
	appsync "github.com/memorybox/notification-center/internal/sync"
	"github.com/memorybox/notification-center/internal/transport"
	"github.com/memorybox/notification-center/internal/ui/setup"
)

const usage = `usage: memorybox [command]

commands:
  (none)    open the notification center
  setup     configure the API URL and access token
  history   print recently seen notifications
`

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "memorybox: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfgPath := model.DefaultConfigPath()
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	tokens := credential.NewTokenSource(credential.NewStore())

	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "":
		return runTUI(cfg, cfgPath, tokens, logger)
	case "setup":
		return runSetup(cfg, cfgPath, tokens)
	case "history":
		return runHistory(cfg, tokens)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func openJournal(cfg *model.AppConfig) (*store.SQLiteStore, error) {
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Journal.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	return store.NewSQLiteStore(cfg.Journal.Path)
}

func runTUI(cfg *model.AppConfig, cfgPath string, tokens *credential.TokenSource, logger *zap.Logger) error {
	wsBase, err := cfg.API.WebSocketBase()
	if err != nil {
		return err
	}

	timeout := time.Duration(cfg.API.TimeoutSec) * time.Second
	client := api.NewClient(cfg.API.BaseURL, tokens,
		api.WithTimeout(timeout),
		api.WithLogger(logger.Named("api")),
	)
	tr := transport.New(client, wsBase,
		transport.WithDialer(transport.NewWebSocketDialer(timeout)),
		transport.WithLogger(logger.Named("live")),
	)

	journal, err := openJournal(cfg)
	if err != nil {
		logger.Warn("journal unavailable; history disabled", zap.Error(err))
		journal = nil
	}

	var watcher *appsync.Watcher
	hook := notify.New(tr,
		notify.NavigatorFunc(func(r notify.Route, n model.Notification) { watcher.Navigate(r, n) }),
		notify.WithLogger(logger.Named("notify")),
		notify.WithPageSize(cfg.Notifications.PageSize),
		notify.WithActionTimeout(timeout),
	)

	watcherOpts := []appsync.Option{
		appsync.WithLiveProbe(tr.IsOpen),
		appsync.WithLogger(logger.Named("sync")),
	}
	deps := app.Deps{
		Config:     *cfg,
		ConfigPath: cfgPath,
		Tokens:     tokens,
		Hook:       hook,
		Live:       tr,
		Logger:     logger,
	}
	if journal != nil {
		defer journal.Close()
		watcherOpts = append(watcherOpts, appsync.WithJournal(journal))
		deps.Journal = journal
	}
	watcher = appsync.New(hook, watcherOpts...)
	deps.Watcher = watcher

	p := tea.NewProgram(app.New(deps), tea.WithAltScreen())
	_, runErr := p.Run()

	hook.Unmount()
	hook.Wait()
	watcher.Stop()

	if runErr != nil {
		return fmt.Errorf("running notification center: %w", runErr)
	}
	return nil
}

func runSetup(cfg *model.AppConfig, cfgPath string, tokens *credential.TokenSource) error {
	final, err := tea.NewProgram(setupProgram{Model: setup.New(*cfg, cfgPath, tokens, nil, 80, 20)}).Run()
	if err != nil {
		return fmt.Errorf("running setup: %w", err)
	}
	if sp, ok := final.(setupProgram); ok && sp.done != nil {
		fmt.Printf("Signed in as %s. Settings saved to %s\n", sp.done.Viewer, cfgPath)
	}
	return nil
}

// setupProgram runs the setup view on its own and quits when it finishes.
type setupProgram struct {
	setup.Model
	done *setup.DoneMsg
}

func (s setupProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case setup.DoneMsg:
		s.done = &msg
		return s, tea.Quit
	case setup.CancelMsg:
		return s, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return s, tea.Quit
		}
	case tea.WindowSizeMsg:
		s.Model.SetSize(msg.Width, msg.Height)
	}
	var cmd tea.Cmd
	s.Model, cmd = s.Model.Update(msg)
	return s, cmd
}

func runHistory(cfg *model.AppConfig, tokens *credential.TokenSource) error {
	token, err := tokens.Token()
	if err != nil {
		return err
	}
	if token == "" {
		return errors.New("not signed in; run memorybox setup")
	}
	viewer, err := credential.ViewerFromToken(token)
	if err != nil {
		return err
	}

	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if journal == nil {
		return errors.New("history is disabled (journal.enabled=false)")
	}
	defer journal.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := journal.Recent(ctx, viewer, 50)
	if err != nil {
		return err
	}
	unread, err := journal.CountUnread(ctx, viewer)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No history yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Println(app.HistoryLine(e))
	}
	fmt.Printf("\n%d unread\n", unread)
	return nil
}
