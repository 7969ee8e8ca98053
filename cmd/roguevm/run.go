package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ocx/roguevm/internal/ai"
	"github.com/ocx/roguevm/internal/batch"
	"github.com/ocx/roguevm/internal/config"
	"github.com/ocx/roguevm/internal/engine"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/metrics"
	"github.com/ocx/roguevm/internal/oracle"
	"github.com/ocx/roguevm/internal/prover"
	"github.com/ocx/roguevm/internal/scheduler"
	"github.com/ocx/roguevm/internal/workers"
	"github.com/ocx/roguevm/internal/workers/bus"
	"github.com/ocx/roguevm/internal/wsbridge"
)

type runFlags struct {
	session    string
	oraclePath string
	httpAddr   string
	redisAddr  string
}

func parseRunFlags(args []string) (runFlags, error) {
	f := runFlags{redisAddr: "localhost:6379"}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--session", "-s":
			i++
			f.session = args[i]
		case "--oracle", "-o":
			i++
			f.oraclePath = args[i]
		case "--http":
			i++
			f.httpAddr = args[i]
		case "--redis":
			i++
			f.redisAddr = args[i]
		default:
			return f, fmt.Errorf("unrecognized flag %q", args[i])
		}
	}
	if f.session == "" {
		return f, fmt.Errorf("--session is required")
	}
	if f.oraclePath == "" {
		return f, fmt.Errorf("--oracle is required")
	}
	return f, nil
}

// mesh bundles every live handle the run loop and the --http inspector
// server need for one session.
type mesh struct {
	sessionID   string
	bus         *bus.Bus
	sim         *workers.Simulation
	persistence *workers.Persistence
	prover      *workers.Prover
	hub         *wsbridge.Hub
	env         oracle.Env
	inspector   *batch.Inspector
	pubsub      *bus.PubSubFanout
	cloudTasks  *prover.CloudTasksDispatcher
}

func buildMesh(f runFlags, cfg *config.Config, m *metrics.Metrics) (*mesh, error) {
	bundle, err := oracle.Load(f.oraclePath)
	if err != nil {
		return nil, fmt.Errorf("load oracle bundle: %w", err)
	}
	env := bundle.AsEnv()

	checkpoints := batch.NewCheckpointStore(cfg.Session.BaseDir)
	state := gstate.New(cfg.Simulation.Seed)
	if cp, err := checkpoints.LatestAtOrBefore(f.session, gstate.Nonce(^uint64(0))); err == nil && cp != nil && cp.HasStateSnapshot {
		slog.Info("resuming session from checkpoint", "session", f.session, "nonce", cp.Nonce)
		state = cp.State.Clone()
	}

	repo, err := batch.NewPostgresRepository(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect batch repository: %w", err)
	}
	if err := repo.EnsureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure batch schema: %w", err)
	}

	eng := engine.NewEngine()
	sch := scheduler.New(eng)
	b := bus.New()

	sim := workers.NewSimulation(f.session, state, env, eng, sch, b, m)

	var cloudTasks *prover.CloudTasksDispatcher
	if cfg.CloudTasks.Enabled {
		cloudTasks, err = prover.NewCloudTasksDispatcher(context.Background(),
			cfg.CloudTasks.ProjectID, cfg.CloudTasks.LocationID, cfg.CloudTasks.QueueID, cfg.CloudTasks.CallbackURL)
		if err != nil {
			slog.Warn("cloud tasks dispatcher unavailable, batches will only be picked up by local poll loop", "err", err)
			cloudTasks = nil
		}
	}

	persistence, err := workers.NewPersistence(f.session, b, cfg.Session.BaseDir, checkpoints,
		batch.EveryNActions{N: gstate.Nonce(cfg.Session.CheckpointEveryN)}, repo, sim, m, cloudTasks)
	if err != nil {
		return nil, fmt.Errorf("start persistence worker: %w", err)
	}

	var backend prover.Backend
	switch cfg.Prover.Backend {
	case "docker":
		backend = prover.NewDockerBackend(cfg.Prover.DockerImage)
	case "noop", "":
		backend = prover.NoopBackend{}
	default:
		return nil, fmt.Errorf("unknown prover backend %q", cfg.Prover.Backend)
	}

	lease, err := prover.NewLease(f.redisAddr, "", 0)
	if err != nil {
		return nil, fmt.Errorf("connect batch lease: %w", err)
	}

	proverWorker := workers.NewProver(b, repo, checkpoints, cfg.Session.BaseDir, env, backend, lease, m)

	hub := wsbridge.NewHub(f.session, b)

	inspector := &batch.Inspector{Repo: repo, Checkpoints: checkpoints, ActionLogDir: cfg.Session.BaseDir}

	var pubsubFanout *bus.PubSubFanout
	if cfg.PubSub.Enabled {
		pubsubFanout, err = bus.NewPubSubFanout(context.Background(), b, cfg.PubSub.ProjectID, cfg.PubSub.TopicID)
		if err != nil {
			slog.Warn("pubsub fanout unavailable, continuing with in-process bus only", "err", err)
			pubsubFanout = nil
		}
	}

	return &mesh{
		sessionID:   f.session,
		bus:         b,
		sim:         sim,
		persistence: persistence,
		prover:      proverWorker,
		hub:         hub,
		env:         env,
		inspector:   inspector,
		pubsub:      pubsubFanout,
		cloudTasks:  cloudTasks,
	}, nil
}

func (msh *mesh) Close() {
	if msh.cloudTasks != nil {
		msh.cloudTasks.Close()
	}
	if msh.pubsub != nil {
		msh.pubsub.Close()
	}
	msh.hub.Stop()
	msh.prover.Stop()
	msh.persistence.Close()
	msh.sim.Stop()
}

func cmdRun(args []string) error {
	f, err := parseRunFlags(args)
	if err != nil {
		return err
	}
	cfg := config.Get()
	m := metrics.New()

	msh, err := buildMesh(f, cfg, m)
	if err != nil {
		return err
	}
	defer msh.Close()

	httpAddr := f.httpAddr
	if httpAddr == "" {
		httpAddr = cfg.Server.Addr
	}
	var srv *http.Server
	if httpAddr != "" {
		srv = startInspectorServer(httpAddr, msh)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		runTurnLoop(ctx, msh)
		close(done)
	}()

	<-ctx.Done()
	slog.Info("roguevm: shutdown signal received", "session", f.session)
	<-done

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("inspector server shutdown failed", "err", err)
		}
	}
	return nil
}

// runTurnLoop repeatedly prepares the next turn and executes either the
// player's stdin-issued action or the NPC's AI-decided action, until ctx
// is cancelled or the active-entity set goes empty.
func runTurnLoop(ctx context.Context, msh *mesh) {
	stdin := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := msh.sim.PrepareNextTurn(); err != nil {
			slog.Warn("no actor ready to act, stopping turn loop", "err", err)
			return
		}

		state := msh.sim.QueryState()
		actor := state.Turn.CurrentActor

		var action engine.Action
		if actor == gstate.PlayerID {
			fmt.Printf("[nonce %d] your turn> ", state.Turn.Nonce)
			line, err := stdin.ReadString('\n')
			if err != nil {
				return
			}
			action = parsePlayerCommand(strings.TrimSpace(line))
		} else {
			action = ai.Decide(state, msh.env, actor)
		}

		if _, err := msh.sim.ExecuteAction(action); err != nil {
			fmt.Printf("action rejected: %v\n", err)
		}
	}
}

// parsePlayerCommand turns a line of stdin into an Action. Unrecognized
// input resolves to Wait rather than aborting the loop — a typo should
// cost the player a turn, not crash the session.
func parsePlayerCommand(line string) engine.Action {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return engine.Action{Actor: gstate.PlayerID, Kind: gstate.ActionWait}
	}
	switch strings.ToLower(fields[0]) {
	case "move", "m":
		if len(fields) < 2 {
			break
		}
		dir, ok := parseDirection(fields[1])
		if !ok {
			break
		}
		return engine.Action{Actor: gstate.PlayerID, Kind: gstate.ActionMove, Input: engine.Input{Direction: &dir}}
	case "attack", "a":
		if len(fields) < 2 {
			break
		}
		id, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			break
		}
		target := gstate.EntityID(id)
		return engine.Action{Actor: gstate.PlayerID, Kind: gstate.ActionAttack, Input: engine.Input{Target: &target}}
	case "wait", "w", "":
		return engine.Action{Actor: gstate.PlayerID, Kind: gstate.ActionWait}
	}
	return engine.Action{Actor: gstate.PlayerID, Kind: gstate.ActionWait}
}

func parseDirection(s string) (gstate.Direction, bool) {
	switch strings.ToLower(s) {
	case "n", "north":
		return gstate.North, true
	case "s", "south":
		return gstate.South, true
	case "e", "east":
		return gstate.East, true
	case "w", "west":
		return gstate.West, true
	case "ne", "northeast":
		return gstate.NorthEast, true
	case "nw", "northwest":
		return gstate.NorthWest, true
	case "se", "southeast":
		return gstate.SouthEast, true
	case "sw", "southwest":
		return gstate.SouthWest, true
	}
	return 0, false
}
