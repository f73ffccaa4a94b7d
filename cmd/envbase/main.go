// envbase - unified environment loader
//
// Loads the process environment from a structured file and/or a backing
// store (MongoDB, PostgreSQL, SQLite, Redis), then runs a command or
// manipulates stored entries.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"

	"github.com/adrianmcphee/envbase"
)

func main() {
	// Check for subcommands first
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "get":
			runGet(os.Args[2:])
			return
		case "set":
			runSet(os.Args[2:])
			return
		case "del":
			runDel(os.Args[2:])
			return
		case "list":
			runList(os.Args[2:])
			return
		case "version", "--version", "-version":
			fmt.Println("envbase " + envbase.Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	// Default: load the environment and run the given command
	runCommand()
}

func printHelp() {
	fmt.Println(`envbase - unified environment loader

Usage:
  envbase [flags] -- command [args...]   Run a command with the merged environment
  envbase get KEY [flags]                Print a stored value
  envbase set KEY VALUE [flags]          Upsert a stored value
  envbase del KEY [flags]                Delete a stored value
  envbase list [flags]                   Print every stored entry
  envbase version                        Print the version

Common flags:
  --store string     Connection descriptor (or ENVBASE_STORE_URL)
  --table string     Collection or table name (or ENVBASE_TABLE)
  --env-file string  Environment file to merge (or ENVBASE_ENV_FILE; run mode only)

Recognized descriptors:
  mongodb://...              MongoDB document store
  postgres://...             PostgreSQL server
  redis://...                Redis cache server
  path ending .db/.sqlite/.sqlite3   Local SQLite file`)
}

// storeFlags registers the flags shared by every mode on fs and returns
// pointers to their values.
func storeFlags(fs *flag.FlagSet) (store, table, envFile *string) {
	store = fs.String("store", "", "Connection descriptor (falls back to "+envbase.EnvStoreURL+")")
	table = fs.String("table", "", "Collection or table name (falls back to "+envbase.EnvCollection+")")
	envFile = fs.String("env-file", "", "Environment file to merge (falls back to "+envbase.EnvFilePath+")")
	return store, table, envFile
}

// openSession builds and initializes a session from flags plus the
// ENVBASE_* environment fallbacks.
func openSession(ctx context.Context, envFile, store, table string) *envbase.Session {
	session, err := envbase.Load(ctx, envbase.ConfigFromEnvWithOverrides(envFile, store, table))
	if err != nil {
		log.Fatalf("envbase: %v", err)
	}
	return session
}

func runCommand() {
	fs := flag.NewFlagSet("envbase", flag.ExitOnError)
	store, table, envFile := storeFlags(fs)
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		printHelp()
		os.Exit(2)
	}

	ctx := context.Background()
	session := openSession(ctx, *envFile, *store, *table)
	defer session.Close(ctx)

	// The default ProcessMirror has already written every loaded entry into
	// this process's environment, so the child inherits the merged view.
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = os.Environ()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		log.Fatalf("envbase: running %s: %v", args[0], err)
	}
}

func runGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	store, table, _ := storeFlags(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatal("envbase get: expected exactly one KEY argument")
	}

	ctx := context.Background()
	session := openSession(ctx, "", *store, *table)
	defer session.Close(ctx)

	value, err := session.Get(ctx, fs.Arg(0))
	if err != nil {
		if envbase.IsNotFound(err) {
			log.Fatalf("envbase get: %s: not found", fs.Arg(0))
		}
		log.Fatalf("envbase get: %v", err)
	}
	fmt.Println(value)
}

func runSet(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	store, table, _ := storeFlags(fs)
	fs.Parse(args)

	if fs.NArg() != 2 {
		log.Fatal("envbase set: expected KEY VALUE arguments")
	}

	ctx := context.Background()
	session := openSession(ctx, "", *store, *table)
	defer session.Close(ctx)

	if err := session.Put(ctx, fs.Arg(0), fs.Arg(1)); err != nil {
		log.Fatalf("envbase set: %v", err)
	}
}

func runDel(args []string) {
	fs := flag.NewFlagSet("del", flag.ExitOnError)
	store, table, _ := storeFlags(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatal("envbase del: expected exactly one KEY argument")
	}

	ctx := context.Background()
	session := openSession(ctx, "", *store, *table)
	defer session.Close(ctx)

	if err := session.Delete(ctx, fs.Arg(0)); err != nil {
		if envbase.IsNotFound(err) {
			log.Fatalf("envbase del: %s: not found", fs.Arg(0))
		}
		log.Fatalf("envbase del: %v", err)
	}
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	store, table, _ := storeFlags(fs)
	fs.Parse(args)

	ctx := context.Background()
	session := openSession(ctx, "", *store, *table)
	defer session.Close(ctx)

	entries, err := session.GetAll(ctx)
	if err != nil {
		log.Fatalf("envbase list: %v", err)
	}
	for _, e := range entries {
		fmt.Printf("%s=%s\n", e.Key, e.Value)
	}
}
