package scene

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
)

// MarshalJSON encodes g as indented JSON.
func MarshalJSON(g *Graph) ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeRender, err, "encode scene json")
	}
	return append(data, '\n'), nil
}

// UnmarshalJSON decodes a graph encoded by MarshalJSON.
func UnmarshalJSON(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "decode scene json")
	}
	return &g, nil
}

// MarshalMsgpack encodes g as MessagePack.
func MarshalMsgpack(g *Graph) ([]byte, error) {
	data, err := msgpack.Marshal(g)
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeRender, err, "encode scene msgpack")
	}
	return data, nil
}

// UnmarshalMsgpack decodes a graph encoded by MarshalMsgpack.
func UnmarshalMsgpack(data []byte) (*Graph, error) {
	var g Graph
	if err := msgpack.Unmarshal(data, &g); err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "decode scene msgpack")
	}
	return &g, nil
}
