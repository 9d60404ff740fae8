package servers

import "errors"

// ErrStorage marks an unreadable or corrupt registry document. Distinct from
// an absent document, which simply yields an empty registry.
var ErrStorage = errors.New("server registry storage error")

// Store persists the registry document. Read reports found=false when no
// document exists yet; Write replaces the document wholesale.
type Store interface {
	Read() (doc *Document, found bool, err error)
	Write(doc *Document) error
}
