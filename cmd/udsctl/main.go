// Command udsctl is a small diagnostic harness for the uds package,
// mirroring rolfl-modbus's mbcli in shape: a flat CLICommand struct with
// go-flags subcommands, here wired against the in-memory udstest fakes
// instead of a real bus.
package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
)

// CLICommand is the root of the CLI's subcommand tree.
type CLICommand struct {
	Verbose bool        `long:"verbose" description:"Has no effect: demo always prints its dispatch log, diag never does"`
	Demo    DemoCommand `command:"demo" description:"Run a scripted diagnostic session against an in-memory ECU"`
	Diag    DiagCommand `command:"diag" description:"Run the scripted session and print only the resulting diagnostics counters"`
}

func main() {
	clicmd := CLICommand{}

	parser := flags.NewParser(&clicmd, flags.HelpFlag|flags.PassDoubleDash)

	_, err := parser.Parse()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
