package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "probe":
		os.Exit(runProbe(os.Args[2:]))
	case "run":
		os.Exit(runDemo(os.Args[2:]))
	case "exec":
		os.Exit(runExec(os.Args[2:]))
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "cleanup":
		os.Exit(runCleanup(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xseat <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  windows             List visible top-level windows")
	fmt.Fprintln(w, "  pick                Choose a window and print its id")
	fmt.Fprintln(w, "  probe               Show screen and window geometry, optionally save a screenshot")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  run                 Open a session and sweep the pointer across the window corners")
	fmt.Fprintln(w, "  exec                Drive a session with computer-use items (JSON lines on stdin)")
	fmt.Fprintln(w, "  serve               Drive a session as an MCP server (stdio transport)")
	fmt.Fprintln(w, "  cleanup             Remove a seat and devices left behind by a crashed session")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config edit         Edit configuration interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Session commands take --window ID, --pick or --desktop (default: --pick).")
	fmt.Fprintln(w, "Run 'xseat <command> --help' for command-specific options.")
}
