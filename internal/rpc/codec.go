// Package rpc holds the wire contract of the discovery registry and the
// monitor: message types, method names, service descriptors and the codec
// they are exchanged with.
//
// Messages travel as JSON under the "regclient-json" content-subtype, so
// the peers must register the same codec. A registry that only speaks
// protobuf binary encoding is not reachable with this package.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the gRPC content-subtype both sides negotiate.
const CodecName = "regclient-json"

func init() {
	encoding.RegisterCodec(Codec{})
}

var _ encoding.Codec = Codec{}

// Codec marshals protobuf messages with protojson and everything else
// with encoding/json.
type Codec struct{}

func (Codec) Name() string {
	return CodecName
}

func (Codec) Marshal(v any) ([]byte, error) {
	if msg, ok := v.(proto.Message); ok {
		return protojson.Marshal(msg)
	}
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if msg, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, msg)
	}
	return json.Unmarshal(data, v)
}

// CallOptions must be passed to every client invocation.
func CallOptions() []grpc.CallOption {
	return []grpc.CallOption{grpc.CallContentSubtype(CodecName)}
}
