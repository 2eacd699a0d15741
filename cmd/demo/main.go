// Demo drives the yank-history engine end to end against an in-memory
// store and a fake editor host: it records register changes, cycles
// through the resulting history, and shows the promote-on-stop behavior.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/yring/yring/internal/engine"
	"github.com/yring/yring/internal/host"
	"github.com/yring/yring/internal/host/fakehost"
	"github.com/yring/yring/internal/registers"
	"github.com/yring/yring/internal/store"
	"github.com/yring/yring/internal/store/memstore"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()

	editor := fakehost.New()
	source := registers.NewMapSource()
	eng := engine.New(engine.Options{
		Store:      memstore.NewMemoryStore(),
		Host:       editor,
		Source:     source,
		MaxEntries: 10,
		Logger:     log,
	})
	defer eng.Close()

	// Simulate three yanks into the unnamed register.
	for _, text := range []string{"alpha\n", "bravo\n", "charlie\n"} {
		source.Set(registers.UnnamedRegister, registers.Content{
			Text: text,
			Kind: store.KindLinewise,
		})
		entry, err := eng.RecordChange(registers.ChangeEvent{EventSourced: true})
		if err != nil {
			fmt.Printf("record failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("yanked %q -> entry %d\n", text, entry.ID)
	}

	// Paste the newest entry, then cycle back through history.
	session := "buffer-1"
	editor.Buffer = "charlie\n"
	if !eng.StartCycle(session, host.PasteContext{Register: registers.UnnamedRegister, Command: "p"}) {
		fmt.Println("nothing to cycle")
		os.Exit(1)
	}

	fmt.Printf("\npasted: %q\n", editor.Buffer)
	for {
		entry, err := eng.CycleNext(session)
		if err != nil {
			fmt.Printf("cycle failed: %v\n", err)
			os.Exit(1)
		}
		if entry == nil {
			fmt.Println("reached the oldest entry")
			break
		}
		fmt.Printf("cycled to: %q\n", editor.Buffer)
	}

	// Step forward once, then stop: the shown entry is promoted.
	if _, err := eng.CyclePrevious(session); err != nil {
		fmt.Printf("cycle failed: %v\n", err)
		os.Exit(1)
	}
	promoted := eng.StopCycle(session, "done")
	if promoted != nil {
		fmt.Printf("\nstopped on %q, promoted to front\n", promoted.Content)
	}

	fmt.Println("\nhistory, newest first:")
	for i, entry := range eng.Recent(0) {
		fmt.Printf("  %d: %q\n", i, entry.Content)
	}
}
