// Package security provides workload identity for roguevm's inter-process
// surfaces: the --http inspector listener can require mTLS authenticated
// by SPIFFE SVIDs instead of a static certificate, so a prover fleet or
// a remote inspector client authenticates by workload identity rather
// than a shared secret.
package security

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/spiffe/go-spiffe/v2/spiffeid"
	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
	"github.com/spiffe/go-spiffe/v2/workloadapi"
)

// Identity wraps a SPIFFE X.509 source used to build mTLS server and
// client configs. Callers that never set ROGUEVM_SPIFFE_SOCKET skip this
// entirely — SPIFFE is an optional hardening layer, not a hard dependency
// of the worker mesh.
type Identity struct {
	source *workloadapi.X509Source
}

// NewIdentity connects to the SPIRE agent listening on socketPath. A
// 3-second timeout keeps a missing SPIRE agent from hanging process
// startup indefinitely.
func NewIdentity(socketPath string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	source, err := workloadapi.NewX509Source(ctx, workloadapi.WithClientOptions(workloadapi.WithAddr(socketPath)))
	if err != nil {
		return nil, fmt.Errorf("connect to SPIRE agent at %s: %w", socketPath, err)
	}
	return &Identity{source: source}, nil
}

// ServerTLSConfig returns an mTLS config that only accepts peers whose
// SPIFFE ID's trust domain matches trustDomain — the inspector server's
// listener uses this in place of a static cert/key pair when SPIFFE is
// configured.
func (id *Identity) ServerTLSConfig(trustDomain string) (*tls.Config, error) {
	td, err := spiffeid.TrustDomainFromString(trustDomain)
	if err != nil {
		return nil, fmt.Errorf("invalid trust domain %q: %w", trustDomain, err)
	}
	return tlsconfig.MTLSServerConfig(id.source, id.source, tlsconfig.AuthorizeMemberOf(td)), nil
}

// ClientTLSConfig returns the mTLS config a remote inspector CLI or a
// prover-fleet node dials the --http listener with.
func (id *Identity) ClientTLSConfig() *tls.Config {
	return tlsconfig.MTLSClientConfig(id.source, id.source, tlsconfig.AuthorizeAny())
}

// Close releases the underlying SVID source.
func (id *Identity) Close() error { return id.source.Close() }
