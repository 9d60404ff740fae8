package flows

import (
	"context"
	"fmt"
	"sync"

	"github.com/udap-tools/udap-client-app/servers"
	"github.com/udap-tools/udap-client-app/udap"
)

// Handle is a protocol client primed with validated server metadata, bound to
// one (server, flow) pair.
type Handle struct {
	Client   udap.Client
	Metadata *udap.Metadata
}

// SupportsTieredOAuth reports the capability flag recorded at discovery time.
func (h *Handle) SupportsTieredOAuth() bool {
	return h.Metadata.SupportsTieredOAuth()
}

// HandleCache keeps at most one live handle per flow, bound to the currently
// selected server. Handles are built lazily and discarded wholesale whenever
// the selection changes; a discarded handle is never reused.
type HandleCache struct {
	mu       sync.Mutex
	identity Identity
	factory  udap.ClientFactory
	handles  map[udap.Flow]*Handle
}

func NewHandleCache(identity Identity, factory udap.ClientFactory) *HandleCache {
	return &HandleCache{
		identity: identity,
		factory:  factory,
		handles:  make(map[udap.Flow]*Handle),
	}
}

// GetOrCreate returns the cached handle for the flow, or constructs one bound
// to the profile's base URL and current client identifier and runs metadata
// discovery on it. Discovery or trust validation failure propagates; nothing
// is cached in that case.
func (c *HandleCache) GetOrCreate(ctx context.Context, profile servers.Profile, flow udap.Flow) (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if handle, ok := c.handles[flow]; ok {
		return handle, nil
	}

	client, err := c.factory(udap.ClientConfig{
		PrivateKeyFile:     c.identity.PrivateKeyFile,
		PrivateKeyPassword: c.identity.PrivateKeyPassword,
		TrustAnchorFile:    c.identity.TrustAnchorFile,
		ClientID:           profile.ClientID(flow),
		ServerBaseURL:      profile.ServerBaseURL,
		OrganizationID:     c.identity.OrganizationID,
		OrganizationName:   c.identity.OrganizationName,
		PurposeOfUse:       c.identity.PurposeOfUse,
	})
	if err != nil {
		return nil, fmt.Errorf("[GetOrCreate] constructing %s client: %w", flow, err)
	}

	metadata, err := client.DiscoverMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("[GetOrCreate] %s: %w", profile.ServerBaseURL, err)
	}

	handle := &Handle{Client: client, Metadata: metadata}
	c.handles[flow] = handle
	return handle, nil
}

// Invalidate discards both flow handles. The next use rebuilds them against
// the then-selected server, triggering fresh discovery.
func (c *HandleCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles = make(map[udap.Flow]*Handle)
}
