package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	xclipboard "golang.design/x/clipboard"

	"github.com/yring/yring/internal/clipboard"
	"github.com/yring/yring/internal/clipboard/sysboard"
	"github.com/yring/yring/internal/config"
	"github.com/yring/yring/internal/engine"
	"github.com/yring/yring/internal/host"
	"github.com/yring/yring/internal/registers"
	"github.com/yring/yring/internal/store"
	"github.com/yring/yring/internal/store/dbstore"
	"github.com/yring/yring/internal/tui"
)

// CLI handles the command-line interface
type CLI struct {
	cfg       *config.Config
	configMgr *config.ConfigManager
	store     store.Store
	clipboard clipboard.Clipboard
	log       zerolog.Logger
}

// NewWithArgs creates a new CLI instance. The database path precedence
// is: --db flag > YRING_DB env > config history-location > default.
func NewWithArgs(args *Args) (*CLI, error) {
	configMgr, err := config.NewConfigManager()
	if err != nil {
		return nil, err
	}

	cfg, err := configMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := zerolog.WarnLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	dbPath, err := resolveDBPath(args, cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	st, err := dbstore.Open(dbPath, dbstore.Options{
		MaxEntries:     cfg.MaxEntries,
		MaxContentSize: cfg.MaxContentSize,
		LockTimeout:    cfg.LockTimeout(),
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	return &CLI{
		cfg:       cfg,
		configMgr: configMgr,
		store:     st,
		clipboard: sysboard.New(),
		log:       log,
	}, nil
}

// resolveDBPath picks the history database location.
func resolveDBPath(args *Args, cfg *config.Config) (string, error) {
	if args != nil && args.DBPath != nil {
		return *args.DBPath, nil
	}
	if cfg.HistoryLocation != "" {
		return cfg.HistoryLocation, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "yring", "yring.db"), nil
}

// newEngine builds an engine over the CLI's store with the given
// register source.
func (c *CLI) newEngine(source registers.Source) *engine.Engine {
	return engine.New(engine.Options{
		Store:            c.store,
		Host:             host.NopHost{},
		Source:           source,
		MaxEntries:       c.cfg.MaxEntries,
		TrackedRegisters: c.cfg.TrackedRegisters,
		Logger:           c.log,
	})
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Store != nil:
		return c.executeStore(args.Store)
	case args.Get != nil:
		return c.executeGet(args.Get)
	case args.Search != nil:
		return c.executeSearch(args.Search)
	case args.Clear != nil:
		return c.executeClear(args.Clear)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	case args.Watch != nil:
		return c.executeWatch(args.Watch)
	default:
		return fmt.Errorf("no command specified")
	}
}

// Close releases the store.
func (c *CLI) Close() error {
	return c.store.Close()
}

// executeStore records one entry from stdin, a file, or the clipboard.
func (c *CLI) executeStore(cmd *StoreCmd) error {
	var content string
	switch {
	case cmd.Clipboard:
		text, err := c.clipboard.Read()
		if err != nil {
			return fmt.Errorf("failed to read clipboard: %w", err)
		}
		content = text
	case cmd.File != nil:
		data, err := os.ReadFile(*cmd.File)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		content = string(data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content = string(data)
	}

	if content == "" {
		return fmt.Errorf("refusing to store empty content")
	}

	eng := c.newEngine(registers.NewClipboardSource(c.clipboard))
	entry, err := eng.RecordEntry(&store.AppendInput{
		Content:  content,
		Kind:     store.EntryKind(cmd.Kind),
		Register: cmd.Register,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Stored entry %d (%d bytes)\n", entry.ID, entry.Size)
	return nil
}

// executeGet retrieves an entry by index or through the picker.
func (c *CLI) executeGet(cmd *GetCmd) error {
	eng := c.newEngine(registers.NewClipboardSource(c.clipboard))

	var entry *store.Entry
	if cmd.Index != nil {
		entries := eng.Recent(*cmd.Index + 1)
		if *cmd.Index >= len(entries) {
			return fmt.Errorf("index %d out of range (%d entries)", *cmd.Index, len(entries))
		}
		entry = entries[*cmd.Index]
	} else {
		chosen, err := tui.RunPicker(eng.Recent(0))
		if err != nil {
			return err
		}
		if chosen == nil {
			return nil // aborted
		}
		entry = chosen
	}

	switch {
	case cmd.Clipboard:
		if err := c.clipboard.Write(entry.Content); err != nil {
			return fmt.Errorf("failed to write clipboard: %w", err)
		}
		fmt.Printf("Copied entry %d to clipboard\n", entry.ID)
	case cmd.File != nil:
		if err := os.WriteFile(*cmd.File, []byte(entry.Content), 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Printf("Wrote entry %d to %s\n", entry.ID, *cmd.File)
	default:
		fmt.Print(entry.Content)
	}

	return nil
}

// executeSearch prints matching entries, newest first.
func (c *CLI) executeSearch(cmd *SearchCmd) error {
	eng := c.newEngine(registers.NewClipboardSource(c.clipboard))
	results := eng.Search(cmd.Query, cmd.Limit)

	if len(results) == 0 {
		fmt.Println("No matching entries")
		return nil
	}

	for i, entry := range results {
		label := firstLine(entry.Content, 70)
		fmt.Printf("%3d  %-9s %6dB  %s\n", i, entry.Kind, entry.Size, label)
	}
	return nil
}

// executeClear removes all entries after confirmation.
func (c *CLI) executeClear(cmd *ClearCmd) error {
	if !cmd.Force {
		fmt.Print("Remove all history entries? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	eng := c.newEngine(registers.NewClipboardSource(c.clipboard))
	if err := eng.Clear(); err != nil {
		return err
	}
	fmt.Println("History cleared")
	return nil
}

// executeConfig lists, shows or updates configuration values.
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Key == nil:
		values, err := c.configMgr.List()
		if err != nil {
			return err
		}
		for key, value := range values {
			fmt.Printf("%s = %s\n", key, value)
		}
	case cmd.Value == nil:
		value, err := c.configMgr.Get(*cmd.Key)
		if err != nil {
			return err
		}
		fmt.Println(value)
	default:
		if err := c.configMgr.Update(*cmd.Key, *cmd.Value); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", *cmd.Key, *cmd.Value)
	}
	return nil
}

// executeWatch records clipboard changes until interrupted. It prefers
// the native clipboard watcher and falls back to polling through the
// exec-based clipboard when the watcher cannot initialize.
func (c *CLI) executeWatch(cmd *WatchCmd) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !cmd.Poll {
		if err := xclipboard.Init(); err == nil {
			return c.watchNative(ctx)
		}
		c.log.Debug().Msg("native clipboard watcher unavailable, polling")
	}
	return c.watchPolling(ctx, time.Duration(cmd.IntervalMS)*time.Millisecond)
}

// watchNative records entries from the native clipboard event stream.
func (c *CLI) watchNative(ctx context.Context) error {
	source := &latestSource{}
	eng := c.newEngine(source)

	fmt.Println("Watching clipboard (native)... press ctrl+c to stop")
	changes := xclipboard.Watch(ctx, xclipboard.FmtText)
	for data := range changes {
		source.set(string(data))
		// The watcher only fires on real changes, so the observation
		// is event-sourced: even the first one records an entry.
		entry, err := eng.RecordChange(registers.ChangeEvent{EventSourced: true})
		if err != nil {
			return err
		}
		if entry != nil {
			fmt.Printf("Recorded entry %d (%d bytes)\n", entry.ID, entry.Size)
		}
	}
	return nil
}

// watchPolling records entries by polling the clipboard at an interval.
func (c *CLI) watchPolling(ctx context.Context, interval time.Duration) error {
	eng := c.newEngine(registers.NewClipboardSource(c.clipboard))

	fmt.Println("Watching clipboard (polling)... press ctrl+c to stop")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			entry, err := eng.RecordChange(registers.ChangeEvent{})
			if err != nil {
				return err
			}
			if entry != nil {
				fmt.Printf("Recorded entry %d (%d bytes)\n", entry.ID, entry.Size)
			}
		}
	}
}

// latestSource serves the most recent text pushed by the native watcher
// as the unnamed register.
type latestSource struct {
	mu   sync.Mutex
	text string
}

func (s *latestSource) set(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

// Get returns the last watched text.
func (s *latestSource) Get(register string) (registers.Content, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.text == "" {
		return registers.Content{}, false, nil
	}
	kind := store.KindCharwise
	if strings.HasSuffix(s.text, "\n") {
		kind = store.KindLinewise
	}
	return registers.Content{Text: s.text, Kind: kind}, true, nil
}

// firstLine renders content as a single trimmed line for listings.
func firstLine(content string, width int) string {
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[:idx]
	}
	content = strings.Join(strings.Fields(content), " ")
	if len(content) > width {
		content = content[:width-1] + "…"
	}
	return content
}
