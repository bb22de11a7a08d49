// Package codec serializes handler responses for the value store.
//
// Whatever codec is used, a cached response must decode to a value the caller
// cannot tell apart from the one the handler returned, so pick a codec that
// round-trips every exported field of the response type.
package codec

import "fmt"

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Named is implemented by codecs that report a stable name for logs and spans.
type Named interface {
	Name() string
}

// NameOf returns c's name, or "custom" for codecs that don't implement Named.
func NameOf(c any) string {
	if n, ok := c.(Named); ok {
		return n.Name()
	}
	return "custom"
}

// ForName returns the general-purpose codec registered under name:
// "json" (default when name is empty), "cbor", "cbor-det" or "msgpack".
// Protobuf needs a message constructor and is not available by name.
func ForName[V any](name string) (Codec[V], error) {
	switch name {
	case "", "json":
		return JSON[V]{}, nil
	case "cbor":
		return NewCBOR[V](false)
	case "cbor-det":
		return NewCBOR[V](true)
	case "msgpack":
		return Msgpack[V]{}, nil
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}
