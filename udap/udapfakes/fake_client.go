package udapfakes

import (
	"context"
	"sync"

	"github.com/udap-tools/udap-client-app/udap"
)

var _ udap.Client = (*FakeClient)(nil)

// FakeClient is a scripted udap.Client for tests. Responses are assigned
// directly; every operation counts its invocations so tests can assert how
// many network round trips an orchestration path would have made.
type FakeClient struct {
	lock sync.Mutex

	ServerBaseURL string
	clientID      string

	Metadata    *udap.Metadata
	MetadataErr error

	RegistrationResponse *udap.RegistrationResponse
	RegisterErr          error

	TokenResponse *udap.TokenResponse
	TokenErr      error

	AuthorizeData *udap.AuthorizeData
	AuthorizeErr  error

	ExchangeResponse *udap.TokenResponse
	ExchangeErr      error

	DiscoverCalls  int
	RegisterCalls  int
	TokenCalls     int
	AuthorizeCalls int
	ExchangeCalls  int

	// LastRegistration records the most recent registration request.
	LastRegistration udap.Registration
}

// NewFakeClient returns a fake whose metadata advertises both grant types.
func NewFakeClient(clientID string) *FakeClient {
	return &FakeClient{
		clientID: clientID,
		Metadata: &udap.Metadata{
			GrantTypesSupported: []string{
				string(udap.FlowClientCredentials),
				string(udap.FlowAuthorizationCode),
			},
			ScopesSupported: []string{"system/Patient.read", "user/Patient.read"},
		},
	}
}

func (f *FakeClient) DiscoverMetadata(_ context.Context) (*udap.Metadata, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.DiscoverCalls++
	if f.MetadataErr != nil {
		return nil, f.MetadataErr
	}
	return f.Metadata, nil
}

func (f *FakeClient) Register(_ context.Context, reg udap.Registration) (*udap.RegistrationResponse, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.RegisterCalls++
	f.LastRegistration = reg
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	if f.RegistrationResponse != nil {
		return f.RegistrationResponse, nil
	}
	return &udap.RegistrationResponse{Status: 201, ClientID: "issued-" + string(reg.GrantType()), Scope: reg.Fields().Scope}, nil
}

func (f *FakeClient) ClientCredentialsToken(_ context.Context, _ string) (*udap.TokenResponse, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.TokenCalls++
	if f.TokenErr != nil {
		return nil, f.TokenErr
	}
	if f.TokenResponse != nil {
		return f.TokenResponse, nil
	}
	return &udap.TokenResponse{AccessToken: "fake-b2b-token", TokenType: "Bearer"}, nil
}

func (f *FakeClient) AuthorizationURL(_, _, _ string) (*udap.AuthorizeData, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.AuthorizeCalls++
	if f.AuthorizeErr != nil {
		return nil, f.AuthorizeErr
	}
	if f.AuthorizeData != nil {
		return f.AuthorizeData, nil
	}
	return &udap.AuthorizeData{AuthorizeURL: "https://authz.example.test/authorize?state=fake-state", State: "fake-state"}, nil
}

func (f *FakeClient) ExchangeCode(_ context.Context, _, _ string) (*udap.TokenResponse, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.ExchangeCalls++
	if f.ExchangeErr != nil {
		return nil, f.ExchangeErr
	}
	if f.ExchangeResponse != nil {
		return f.ExchangeResponse, nil
	}
	return &udap.TokenResponse{AccessToken: "fake-b2c-token", TokenType: "Bearer"}, nil
}

func (f *FakeClient) ClientID() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.clientID
}

func (f *FakeClient) SetClientID(id string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.clientID = id
}

// FakeFactory builds FakeClients and remembers them so tests can inspect the
// handle constructed for each flow or probe.
type FakeFactory struct {
	lock    sync.Mutex
	Clients []*FakeClient

	// Configure is applied to every new client before it is returned.
	Configure func(*FakeClient)

	ConstructErr error
}

// Factory returns a udap.ClientFactory backed by this FakeFactory.
func (f *FakeFactory) Factory() udap.ClientFactory {
	return func(cfg udap.ClientConfig) (udap.Client, error) {
		f.lock.Lock()
		defer f.lock.Unlock()
		if f.ConstructErr != nil {
			return nil, f.ConstructErr
		}
		c := NewFakeClient(cfg.ClientID)
		c.ServerBaseURL = cfg.ServerBaseURL
		if f.Configure != nil {
			f.Configure(c)
		}
		f.Clients = append(f.Clients, c)
		return c, nil
	}
}

// DiscoverCalls sums discovery invocations across every constructed client.
func (f *FakeFactory) DiscoverCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	total := 0
	for _, c := range f.Clients {
		total += c.DiscoverCalls
	}
	return total
}

// RegisterCalls sums registration invocations across every constructed client.
func (f *FakeFactory) RegisterCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	total := 0
	for _, c := range f.Clients {
		total += c.RegisterCalls
	}
	return total
}
