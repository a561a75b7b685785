package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/yiblet/clipvault/internal/cli"
)

func main() {
	var args cli.Args
	parser := arg.MustParse(&args)

	if args.Group == nil && args.Item == nil && args.Sub == nil && args.Setting == nil {
		parser.WriteHelp(os.Stdout)
		return
	}

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer cliHandler.Close()

	if err := cliHandler.Execute(&args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
