package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mlund/cardbox/internal/config"
	"github.com/mlund/cardbox/internal/deck"
	"github.com/mlund/cardbox/internal/domain"
	"github.com/mlund/cardbox/internal/review"
	"github.com/mlund/cardbox/internal/storage"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run performs one command per invocation. It returns the process exit code
// so deferred cleanup always executes.
func run(args []string) int {
	cfg, rest, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer db.Close()

	if err := dispatch(db, cfg, rest); err != nil {
		if err == errUsage {
			usage()
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

var errUsage = fmt.Errorf("usage")

func dispatch(db *storage.DB, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return review.NewSession(db, os.Stdin, os.Stdout).Run()
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return errUsage
		}
		in := domain.NewCardInput{Front: args[1], Back: args[2]}
		if err := in.Validate(); err != nil {
			return err
		}
		return db.InsertCard(in.Front, in.Back)

	case "list":
		if len(args) != 1 {
			return errUsage
		}
		fronts, err := review.NewSession(db, os.Stdin, os.Stdout).DueFronts()
		if err != nil {
			return err
		}
		for _, front := range fronts {
			fmt.Println(front)
		}
		return nil

	case "remove":
		if len(args) != 2 {
			return errUsage
		}
		return db.DeleteCard(args[1])

	case "import":
		if len(args) != 2 {
			return errUsage
		}
		source, err := deck.AddSource(db, args[1])
		if err != nil {
			return err
		}
		return deck.SyncOne(db, source, cfg.ReposDir)

	case "sources":
		if len(args) != 1 {
			return errUsage
		}
		sources, err := db.AllSources()
		if err != nil {
			return err
		}
		for _, s := range sources {
			fmt.Printf("%s\t%s\n", s.Kind, s.Path)
		}
		return nil

	case "sync":
		if len(args) != 1 {
			return errUsage
		}
		return deck.SyncAll(db, cfg.ReposDir)

	default:
		return errUsage
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: cardbox [add <front> <back> | list | remove <front> | import <path|url> | sources | sync]")
}
