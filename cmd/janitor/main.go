package main

import (
	"fmt"
	"os"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

const usage = `usage: janitor [command]

commands:
  clean                       clean watched videos now (default)
  serve                       run the HTTP API and scheduled cleanings
  log                         open the cleaning log viewer
  reset-exclusions            clear all five path exclusions
  settings export [file]      write settings as TOML (stdout by default)
  settings import <file>      read settings from a TOML file
  settings set <key> <value>  change one setting
  version                     print the version
`

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(args []string) error {
	if len(args) == 0 {
		return runDefault()
	}
	switch args[0] {
	case "clean":
		return runClean()
	case "serve":
		return runServe()
	case "log":
		return runLog()
	case "reset-exclusions":
		return runResetExclusions()
	case "settings":
		return runSettings(args[1:])
	case "version":
		fmt.Printf("janitor %s (%s)\n", version, commit)
		return nil
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", args[0])
}
