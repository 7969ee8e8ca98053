package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/ocx/roguevm/internal/gstate"
)

// Request is everything the prover needs to produce one batch's proof:
// the oracle bundle and the action log slice it replays, plus the
// checkpoint state to replay from.
type Request struct {
	SessionID      string
	OracleRoot     gstate.Root
	SeedCommitment gstate.Root
	PrevStateRoot  gstate.Root
	StartNonce     uint64
	EndNonce       uint64
	CheckpointJSON []byte
	ActionLogJSON  []byte
}

// Result is what a successful proving run returns: the journal bytes and
// the opaque proof blob destined for Walrus storage.
type Result struct {
	Journal []byte
	Proof   []byte
}

// Backend abstracts the proving runtime so the prover worker can swap in
// a remote or mocked backend without touching its claim/retry logic —
// the same PoolBackend-style seam the ghost-container runtime uses for
// Docker vs Kubernetes.
type Backend interface {
	// Prove runs the zkVM guest against req and returns its journal and
	// proof blob. The container is expected to write a single JSON object
	// {"journal": "<base64>", "proof": "<base64>"} to stdout.
	Prove(ctx context.Context, req Request) (Result, error)
	Name() string
}

// DockerBackend runs the prover guest binary inside a container image on
// the local Docker daemon — the default for single-host deployments,
// mirroring the pool backend's local-docker default.
type DockerBackend struct {
	Image string
}

func NewDockerBackend(image string) *DockerBackend {
	return &DockerBackend{Image: image}
}

func (d *DockerBackend) Name() string { return "docker-local/" + d.Image }

func (d *DockerBackend) Prove(ctx context.Context, req Request) (Result, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return Result{}, fmt.Errorf("docker client: %w", err)
	}
	defer cli.Close()

	input, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("marshal prover request: %w", err)
	}

	hostConfig := &container.HostConfig{
		NetworkMode:    "none",
		ReadonlyRootfs: true,
		Resources: container.Resources{
			NanoCPUs: 4_000_000_000,
			Memory:   4 * 1024 * 1024 * 1024,
		},
	}
	resp, err := cli.ContainerCreate(ctx, &container.Config{
		Image:        d.Image,
		Tty:          false,
		Cmd:          []string{"prove", "--session", req.SessionID},
		OpenStdin:    true,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
	}, hostConfig, nil, nil, "")
	if err != nil {
		return Result{}, fmt.Errorf("create prover container: %w", err)
	}
	defer cli.ContainerRemove(context.Background(), resp.ID, types.ContainerRemoveOptions{Force: true})

	attach, err := cli.ContainerAttach(ctx, resp.ID, types.ContainerAttachOptions{
		Stream: true, Stdin: true, Stdout: true, Stderr: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("attach prover container: %w", err)
	}
	defer attach.Close()

	if err := cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return Result{}, fmt.Errorf("start prover container: %w", err)
	}

	if _, err := attach.Conn.Write(input); err != nil {
		return Result{}, fmt.Errorf("write prover input: %w", err)
	}
	attach.CloseWrite()

	statusCh, errCh := cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return Result{}, fmt.Errorf("wait prover container: %w", err)
		}
	case status := <-statusCh:
		if status.StatusCode != 0 {
			return Result{}, fmt.Errorf("prover container exited with status %d", status.StatusCode)
		}
	}

	var out bytes.Buffer
	if _, err := io.Copy(&out, attach.Reader); err != nil {
		return Result{}, fmt.Errorf("read prover output: %w", err)
	}

	var decoded struct {
		Journal []byte `json:"journal"`
		Proof   []byte `json:"proof"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		return Result{}, fmt.Errorf("decode prover output: %w", err)
	}
	return Result{Journal: decoded.Journal, Proof: decoded.Proof}, nil
}

// NoopBackend composes a journal directly in-process without running any
// guest program or producing a real proof — a stand-in for local
// development and for tests that exercise the batch pipeline without a
// zkVM toolchain available. cmd/roguevm selects it when the prover
// backend is configured as "noop".
type NoopBackend struct{}

func (NoopBackend) Name() string { return "noop" }

func (NoopBackend) Prove(ctx context.Context, req Request) (Result, error) {
	j := Journal{
		OracleRoot:     req.OracleRoot,
		SeedCommitment: req.SeedCommitment,
		PrevStateRoot:  req.PrevStateRoot,
		ActionsRoot:    gstate.Root{},
		NewStateRoot:   req.PrevStateRoot,
		NewNonce:       gstate.Nonce(req.EndNonce),
	}
	return Result{Journal: j.Compose(), Proof: []byte("noop-proof")}, nil
}
