package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

// Protobuf caches proto responses, e.g. Protobuf[*pb.ListProductsResponse].
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *pb.ListProductsResponse { return &pb.ListProductsResponse{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (Protobuf[T]) Name() string { return "protobuf" }

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.new == nil {
		var zero T
		return zero, errors.New("codec: protobuf codec without constructor")
	}
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
