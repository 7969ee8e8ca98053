package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/ocx/roguevm/internal/batch"
	"github.com/ocx/roguevm/internal/config"
	"github.com/ocx/roguevm/internal/gstate"
)

func cmdListSessions(args []string) error {
	saveDir := config.Get().Session.BaseDir
	for i := 0; i < len(args); i++ {
		if args[i] == "--save-dir" {
			i++
			saveDir = args[i]
		}
	}

	entries, err := os.ReadDir(saveDir)
	if err != nil {
		return fmt.Errorf("read save dir %s: %w", saveDir, err)
	}
	var sessions []string
	for _, e := range entries {
		if e.IsDir() {
			sessions = append(sessions, e.Name())
		}
	}
	sort.Strings(sessions)
	for _, s := range sessions {
		fmt.Println(s)
	}
	return nil
}

func cmdReadActions(args []string) error {
	var session string
	var nonce uint64
	saveDir := config.Get().Session.BaseDir
	hasNonce := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--session", "-s":
			i++
			session = args[i]
		case "--nonce", "-n":
			i++
			v, err := strconv.ParseUint(args[i], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid --nonce %q: %w", args[i], err)
			}
			nonce, hasNonce = v, true
		case "--save-dir":
			i++
			saveDir = args[i]
		default:
			return fmt.Errorf("unrecognized flag %q", args[i])
		}
	}
	if session == "" {
		return fmt.Errorf("--session is required")
	}

	path := filepath.Join(saveDir, session, "actions.log")
	r, err := batch.NewLogReader(path)
	if err != nil {
		return fmt.Errorf("open action log: %w", err)
	}
	defer r.Close()

	for {
		e, err := r.ReadNext()
		if err == io.EOF {
			if hasNonce {
				return fmt.Errorf("nonce %d not found in action log", nonce)
			}
			return nil
		}
		if err != nil {
			return err
		}
		if hasNonce && e.Nonce != nonce {
			continue
		}
		fmt.Printf("nonce=%d actor=%d kind=%s delta=%s\n", e.Nonce, e.ActorId, e.ActionKind, e.DeltaJSON)
		if hasNonce {
			return nil
		}
	}
}

func cmdInspectProof(args []string) error {
	var session string
	var startNonce uint64
	dsn := config.Get().Database.DSN
	hasStartNonce := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--session", "-s":
			i++
			session = args[i]
		case "--start-nonce", "-n":
			i++
			v, err := strconv.ParseUint(args[i], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid --start-nonce %q: %w", args[i], err)
			}
			startNonce, hasStartNonce = v, true
		case "--db":
			i++
			dsn = args[i]
		default:
			return fmt.Errorf("unrecognized flag %q", args[i])
		}
	}
	if session == "" || !hasStartNonce {
		return fmt.Errorf("--session and --start-nonce are required")
	}

	repo, err := batch.NewPostgresRepository(dsn)
	if err != nil {
		return fmt.Errorf("connect batch repository: %w", err)
	}
	defer repo.Close()

	b, err := repo.Get(context.Background(), session, gstate.Nonce(startNonce))
	if err != nil {
		return fmt.Errorf("load batch: %w", err)
	}

	fmt.Printf("session=%s start_nonce=%d end_nonce=%d status=%s retries=%d\n",
		b.SessionID, b.StartNonce, b.EndNonce, b.Status.String(), b.RetryCount)
	if len(b.Journal) > 0 {
		fmt.Printf("journal (base64)=%s\n", base64.StdEncoding.EncodeToString(b.Journal))
	}
	return nil
}
