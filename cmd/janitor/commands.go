package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sydlexius/janitor/internal/cleaner"
	"github.com/sydlexius/janitor/internal/janitor"
	"github.com/sydlexius/janitor/internal/logview"
	"github.com/sydlexius/janitor/internal/settings"
)

// runDefault honours the default_action setting.
func runDefault() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	st, err := a.settings.Load(context.Background())
	a.close()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if st.DefaultAction == settings.ActionLog {
		return runLog()
	}
	return runClean()
}

func runClean() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	busDone := make(chan struct{})
	go func() {
		a.bus.Start(context.Background())
		close(busDone)
	}()

	tty := newTerminal(a.settings)
	res, runErr := a.runner.Run(ctx, janitor.Request{
		Trigger:  janitor.TriggerManual,
		Prompter: tty,
		Progress: &progress{out: os.Stderr},
	})

	// Let notifications go out before exiting.
	a.bus.Stop()
	<-busDone

	if runErr != nil {
		return runErr
	}
	switch {
	case res.Skipped != "":
		fmt.Printf("Skipped: %s.\n", res.Skipped)
	case res.Outcome.Status == cleaner.Aborted:
		// The user canceled or chose to set a holding folder first.
	case res.Outcome.Total() > 0:
		fmt.Printf("Cleaned %s.\n", res.Message)
		if tty.confirm("View the cleaning log?") {
			return logview.Run(a.cleanLog, a.cfg.Cleaning.LogKeepLines)
		}
	default:
		fmt.Println("Nothing to do.")
	}
	return nil
}

func runLog() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	return logview.Run(a.cleanLog, a.cfg.Cleaning.LogKeepLines)
}

func runResetExclusions() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.settings.ResetExclusions(context.Background()); err != nil {
		return err
	}
	fmt.Println("Path exclusions reset.")
	return nil
}

func runSettings(args []string) error {
	if len(args) == 0 {
		return errors.New("settings: expected export, import or set")
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := context.Background()

	switch args[0] {
	case "export":
		if len(args) < 2 || args[1] == "-" {
			return a.settings.Export(ctx, os.Stdout)
		}
		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("creating %s: %w", args[1], err)
		}
		if err := a.settings.Export(ctx, f); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		return f.Close()

	case "import":
		if len(args) < 2 {
			return errors.New("settings import: file required")
		}
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[1], err)
		}
		defer f.Close() //nolint:errcheck
		n, err := a.settings.Import(ctx, f)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s.\n", plural(n, "setting"))
		return nil

	case "set":
		if len(args) != 3 {
			return errors.New("settings set: expected <key> <value>")
		}
		if err := a.settings.Set(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("%s updated.\n", args[1])
		return nil
	}
	return fmt.Errorf("settings: unknown subcommand %q", args[0])
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
