// Command ghostreader looks up translations through a ghostreader backend,
// scans sources for translation keys and exports the remote translations.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ZaguanLabs/ghostreader"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = ghostreader.Version
	commit    = ghostreader.GitCommit
	buildDate = ghostreader.BuildDate
)

const usage = `Usage: ghostreader <command> [flags] [args]

Commands:
  lookup   Translate keys (ghostreader lookup --locale de nav.home nav.about)
  scan     List translation keys used in a directory (ghostreader scan ./web)
  export   Write the remote translations to a JSON export
  import   Load a JSON export into the Redis snapshot store
  version  Show version

Run "ghostreader <command> --help" for the flags of a command.
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("command required")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "lookup":
		return runLookup(rest, stdout, stderr)
	case "scan":
		return runScan(rest, stdout, stderr)
	case "export":
		return runExport(rest, stdout, stderr)
	case "import":
		return runImport(rest, stdout, stderr)
	case "version", "--version", "-version":
		printVersion(stdout)
		return nil
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return nil
	}

	fmt.Fprint(stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func printVersion(stdout io.Writer) {
	fmt.Fprintf(stdout, "%s %s\n", ghostreader.Name, version)
	if commit != "unknown" && commit != "" {
		fmt.Fprintf(stdout, "  commit:  %s\n", commit)
	}
	if buildDate != "unknown" && buildDate != "" {
		fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
	}
}
