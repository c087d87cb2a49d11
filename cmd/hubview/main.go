package main

import (
	"fmt"
	"os"
)

const usageText = `hubview shows a live view of a Home Assistant hub.

Usage:
  hubview <command> [flags]

Commands:
  ui       run the terminal UI
  dump     print one snapshot of the hub and exit
  config   print configuration (effective or defaults)
  version  print the build version
  help     show help

Flags:
  -h, --help   show help

UI flags:
  --ids        show entity ids next to each row

Dump flags:
  --format     text|json (default text)
  --timeout    give up after this long (default 30s)

Environment:
  HUBVIEW_CONFIG     config file (default ~/.hubview/config.toml)
  HUBVIEW_URL        hub websocket url
  HUBVIEW_TOKEN      long-lived access token
  HUBVIEW_LOG_LEVEL  debug|info|warn|error

Examples:
  hubview ui
  hubview dump --format json
  hubview config --default --format toml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"ui"}
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
