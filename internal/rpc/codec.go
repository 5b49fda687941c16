package rpc

import "encoding/json"

// jsonCodec implements google.golang.org/grpc/encoding.Codec over plain
// JSON. No .proto stubs are available for this service, so the wire
// messages in messages.go are ordinary tagged structs instead of generated
// protobuf types; ForceServerCodec in server.go wires this codec in place
// of the default proto codec.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}
