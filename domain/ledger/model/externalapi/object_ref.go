package externalapi

import "fmt"

// ObjectRef pins an object's state at build time: its identity,
// version and content digest.
type ObjectRef struct {
	ObjectID ObjectID
	Version  uint64
	Digest   Digest
}

func (ref ObjectRef) String() string {
	return fmt.Sprintf("%s@%d(%s)", ref.ObjectID, ref.Version, ref.Digest)
}
