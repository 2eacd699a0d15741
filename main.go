package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/yring/yring/internal/cli"
)

func main() {
	// Parse command-line arguments
	var args cli.Args
	parser := arg.MustParse(&args)

	// If no subcommand provided, launch the picker (same as 'yring get')
	if args.Store == nil && args.Get == nil && args.Search == nil &&
		args.Clear == nil && args.Config == nil && args.Watch == nil {
		args.Get = &cli.GetCmd{}
	}

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer cliHandler.Close()

	if err := cliHandler.Execute(&args); err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println()
		parser.WriteUsage(os.Stderr)
		os.Exit(1)
	}
}
