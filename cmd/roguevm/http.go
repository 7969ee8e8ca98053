package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ocx/roguevm/internal/pb"
	"github.com/ocx/roguevm/internal/security"
)

// startInspectorServer stands up the read-only HTTP surface a running
// session exposes: the gRPC-shaped inspector over REST, a WebSocket event
// stream, and the Prometheus scrape endpoint. Structured the way the
// teacher's cmd/api/main.go lays out its router (health check, a
// /api/v1 subrouter, then a background ListenAndServe with graceful
// shutdown driven by the caller's signal context).
func startInspectorServer(addr string, msh *mesh) *http.Server {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sessions/{session}/checkpoints/{nonce}", handleGetCheckpoint(msh)).Methods("GET")
	api.HandleFunc("/sessions/{session}/actions/{nonce}", handleGetActionLogEntry(msh)).Methods("GET")
	api.HandleFunc("/sessions/{session}/batches/{start_nonce}", handleGetBatchStatus(msh)).Methods("GET")

	router.HandleFunc("/sessions/{session}/stream", msh.hub.ServeHTTP)
	router.HandleFunc("/internal/prove", handleProveCallback(msh)).Methods("POST")

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	socket := os.Getenv("ROGUEVM_SPIFFE_SOCKET")
	trustDomain := os.Getenv("ROGUEVM_SPIFFE_TRUST_DOMAIN")
	if socket != "" && trustDomain != "" {
		id, err := security.NewIdentity(socket)
		if err != nil {
			slog.Warn("spiffe identity unavailable, falling back to plaintext http", "err", err)
		} else if tlsCfg, err := id.ServerTLSConfig(trustDomain); err != nil {
			slog.Warn("spiffe server tls config failed, falling back to plaintext http", "err", err)
		} else {
			srv.TLSConfig = tlsCfg
		}
	}

	go func() {
		slog.Info("inspector http server listening", "addr", addr, "mtls", srv.TLSConfig != nil)
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			slog.Error("inspector http server failed", "err", err)
		}
	}()
	return srv
}

func handleGetCheckpoint(msh *mesh) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		nonce, err := strconv.ParseUint(vars["nonce"], 10, 64)
		if err != nil {
			http.Error(w, "invalid nonce", http.StatusBadRequest)
			return
		}
		cp, err := msh.inspector.GetCheckpoint(r.Context(), &pb.GetCheckpointRequest{SessionId: vars["session"], Nonce: nonce})
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, cp)
	}
}

func handleGetActionLogEntry(msh *mesh) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		nonce, err := strconv.ParseUint(vars["nonce"], 10, 64)
		if err != nil {
			http.Error(w, "invalid nonce", http.StatusBadRequest)
			return
		}
		entry, err := msh.inspector.GetActionLogEntry(r.Context(), &pb.GetActionLogEntryRequest{SessionId: vars["session"], Nonce: nonce})
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, entry)
	}
}

func handleGetBatchStatus(msh *mesh) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		startNonce, err := strconv.ParseUint(vars["start_nonce"], 10, 64)
		if err != nil {
			http.Error(w, "invalid start_nonce", http.StatusBadRequest)
			return
		}
		b, err := msh.inspector.GetBatchStatus(r.Context(), &pb.GetBatchStatusRequest{SessionId: vars["session"], StartNonce: startNonce})
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, b)
	}
}

// handleProveCallback is the target Cloud Tasks POSTs to when a scheduled
// proving task fires (see internal/prover.CloudTasksDispatcher). It drives
// the named batch through the Prover worker synchronously so the task
// only completes once proving has actually been attempted.
func handleProveCallback(msh *mesh) http.HandlerFunc {
	type body struct {
		SessionID  string `json:"session_id"`
		StartNonce uint64 `json:"start_nonce"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var b body
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := msh.prover.ProveNow(r.Context(), b.SessionID, b.StartNonce); err != nil {
			slog.Error("prove callback failed", "session", b.SessionID, "start_nonce", b.StartNonce, "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("inspector: failed writing json response", "err", err)
	}
}
