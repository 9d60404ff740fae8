package fakerepo

import (
	"sync"

	"github.com/udap-tools/udap-client-app/servers"
)

var _ servers.Store = (*FakeStore)(nil)

// FakeStore is an in-memory servers.Store for tests. It counts writes and can
// be scripted to fail.
type FakeStore struct {
	lock sync.Mutex

	Doc        *servers.Document
	ReadErr    error
	WriteErr   error
	WriteCalls int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (s *FakeStore) Read() (*servers.Document, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.ReadErr != nil {
		return nil, false, s.ReadErr
	}
	if s.Doc == nil {
		return nil, false, nil
	}
	copied := *s.Doc
	copied.UDAPServers = append([]servers.Profile(nil), s.Doc.UDAPServers...)
	return &copied, true, nil
}

func (s *FakeStore) Write(doc *servers.Document) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.WriteCalls++
	if s.WriteErr != nil {
		return s.WriteErr
	}
	copied := *doc
	copied.UDAPServers = append([]servers.Profile(nil), doc.UDAPServers...)
	s.Doc = &copied
	return nil
}
