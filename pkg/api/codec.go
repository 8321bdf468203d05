// Package api defines the request and response messages exchanged with the
// splitledger RPC services. Messages are plain structs encoded as JSON.
package api

import "encoding/json"

// Codec is the Connect codec for this package's messages. It registers under
// the "json" name, so Connect serves it as application/json.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (Codec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, message)
}
