// Command roguevm drives one or more game sessions: the `run` subcommand
// starts the full worker mesh (simulation, persistence, prover) for a
// session, and the read-only subcommands inspect what that mesh has
// written to disk and Postgres without touching the live state.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = cmdRun(os.Args[2:])
	case "list-sessions":
		err = cmdListSessions(os.Args[2:])
	case "read-actions":
		err = cmdReadActions(os.Args[2:])
	case "inspect-proof":
		err = cmdInspectProof(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "roguevm: unknown subcommand %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "roguevm: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `roguevm - deterministic roguelike engine with an optimistic-rollup proof pipeline

Usage:
  roguevm run --session ID --oracle PATH [--http ADDR] [--redis ADDR] [flags]
      Start the worker mesh for one session and drive its turn loop from
      stdin (player) and the utility AI (NPCs).

  roguevm list-sessions [--save-dir DIR]
      List every session with a checkpoint directory under DIR.

  roguevm read-actions --session ID --nonce N [--save-dir DIR]
      Print the action log entry at nonce N.

  roguevm inspect-proof --session ID --start-nonce N [--db DSN]
      Print an action batch's status and, once proven, its journal.

Environment:
  CONFIG_PATH        path to config.yaml (default "config.yaml")
  SAVE_DATA_DIR       session artifact root (default "./sessions")
  ROGUEVM_DATABASE_DSN  Postgres DSN for the batch repository
  ROGUEVM_HTTP_ADDR     --http inspector listen address
`)
}
