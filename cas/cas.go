// Package cas is a content-addressed store for serializable snapshots.
package cas

import (
	"bytes"
	"fmt"
	"io"
)

type CAS interface {
	Put(item Hashable) (Hash, error)
	Has(hash Hash) bool
	Len() int
}

type Serde interface {
	Serialize(w io.Writer) error
	Deserialize(r io.Reader) error
}

type Hashable interface {
	Serde
}

type directStore interface {
	getValue(h Hash) (bool, []byte, error)
}

type Hash uint64

func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// Retrieve loads the item stored under hash into a new T.
//
//	env, err := cas.Retrieve[interp.Env](store, h)
func Retrieve[T any, PT interface {
	*T
	Hashable
}](c CAS, hash Hash) (PT, error) {
	v, ok := c.(directStore)
	if !ok {
		return nil, fmt.Errorf("CAS %T does not support direct retrieval", c)
	}
	has, data, err := v.getValue(hash)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("hash not found in CAS: %s", hash)
	}

	entry := &TypedEntry{}
	if err := entry.Deserialize(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("deserializing TypedEntry: %w", err)
	}
	out := PT(new(T))
	if tag := typeTag(out); tag != entry.TypeTag {
		return nil, fmt.Errorf("type mismatch: stored %s, want %s", entry.TypeTag, tag)
	}
	if err := out.Deserialize(bytes.NewReader(entry.Data)); err != nil {
		return nil, fmt.Errorf("deserializing %s: %w", entry.TypeTag, err)
	}
	return out, nil
}
