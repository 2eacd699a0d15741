package cli

import (
	"fmt"

	"github.com/yring/yring/internal/store"
)

// Args represents the top-level command structure
type Args struct {
	Store  *StoreCmd  `arg:"subcommand:store" help:"Record content as a history entry"`
	Get    *GetCmd    `arg:"subcommand:get" help:"Retrieve a history entry"`
	Search *SearchCmd `arg:"subcommand:search" help:"Search history contents"`
	Clear  *ClearCmd  `arg:"subcommand:clear" help:"Remove all history entries"`
	Config *ConfigCmd `arg:"subcommand:config" help:"Show or change configuration"`
	Watch  *WatchCmd  `arg:"subcommand:watch" help:"Record system clipboard changes"`

	DBPath *string `arg:"--db,env:YRING_DB" help:"History database path (overrides config)"`
}

// StoreCmd records one entry from stdin, a file, or the clipboard.
type StoreCmd struct {
	File      *string `arg:"positional" help:"File to read from (optional, default stdin)"`
	Clipboard bool    `arg:"-c,--clipboard" help:"Read from clipboard"`
	Register  string  `arg:"-r,--register" default:"\"" help:"Register to attribute the entry to"`
	Kind      string  `arg:"-k,--kind" default:"charwise" help:"Entry kind: charwise, linewise or blockwise"`
}

// GetCmd retrieves an entry by index, or opens the picker.
type GetCmd struct {
	Index     *int    `arg:"positional" help:"History index to retrieve (0=newest, opens picker if omitted)"`
	File      *string `arg:"positional" help:"Output file (optional)"`
	Clipboard bool    `arg:"-c,--clipboard" help:"Copy to clipboard"`
}

// SearchCmd finds entries by content substring.
type SearchCmd struct {
	Query string `arg:"positional,required" help:"Case-insensitive substring to search for"`
	Limit int    `arg:"-n,--limit" default:"10" help:"Maximum number of results"`
}

// ClearCmd removes all history entries.
type ClearCmd struct {
	Force bool `arg:"-f,--force" help:"Skip confirmation prompt"`
}

// ConfigCmd shows or updates configuration values.
type ConfigCmd struct {
	Key   *string `arg:"positional" help:"Configuration key (lists all if omitted)"`
	Value *string `arg:"positional" help:"New value (shows current if omitted)"`
}

// WatchCmd monitors the system clipboard and records changes.
type WatchCmd struct {
	IntervalMS int  `arg:"-i,--interval" default:"500" help:"Poll interval in milliseconds"`
	Poll       bool `arg:"--poll" help:"Force polling instead of the native clipboard watcher"`
}

// Description returns the program description
func (Args) Description() string {
	return "yring - durable yank history with cycling for text editors"
}

// Version returns the program version
func (Args) Version() string {
	return "yring 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  # Record entries
  echo "hello" | yring store        # Record from stdin
  yring store file.txt              # Record from file
  yring store -c                    # Record current clipboard

  # Retrieve entries
  yring get                         # Interactive picker
  yring get 0                       # Print newest entry to stdout
  yring get -c 1                    # Copy second entry to clipboard
  yring search "needle" -n 5        # Search entry contents

  # Keep history in sync with the clipboard
  yring watch                       # Record every clipboard change`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	if args.Store != nil {
		return args.Store.Validate()
	}
	if args.Get != nil {
		return args.Get.Validate()
	}
	if args.Watch != nil {
		return args.Watch.Validate()
	}
	return nil
}

// Validate validates store command arguments
func (s *StoreCmd) Validate() error {
	if s.File != nil && s.Clipboard {
		return fmt.Errorf("cannot specify both file and clipboard input")
	}
	if !store.EntryKind(s.Kind).Valid() {
		return fmt.Errorf("invalid kind %q (must be charwise, linewise or blockwise)", s.Kind)
	}
	return nil
}

// Validate validates get command arguments
func (g *GetCmd) Validate() error {
	if g.Index != nil && *g.Index < 0 {
		return fmt.Errorf("index must be non-negative")
	}
	if g.File != nil && g.Clipboard {
		return fmt.Errorf("cannot specify both file and clipboard output")
	}
	return nil
}

// Validate validates watch command arguments
func (w *WatchCmd) Validate() error {
	if w.IntervalMS <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}
