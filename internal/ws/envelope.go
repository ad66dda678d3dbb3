package ws

import (
	"encoding/json"
	"fmt"
)

// MessageType discriminates envelopes on the persistent player channel
type MessageType string

const (
	TypeLocationUpdate     MessageType = "location_update"
	TypeSelectionRequest   MessageType = "selection_request"
	TypeSelectionBroadcast MessageType = "selection_broadcast"
	TypeTargetBroadcast    MessageType = "target_broadcast"
	TypeLivenessPing       MessageType = "liveness_ping"
	TypeLivenessPong       MessageType = "liveness_pong"
)

// Envelope is the wire format for every message on the player channel.
// Unrecognized types are logged and ignored, never close the connection.
type Envelope struct {
	Type          MessageType     `json:"type"`
	ParticipantID string          `json:"participantId,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope builds an envelope with a JSON-encoded payload
func NewEnvelope(msgType MessageType, participantID string, payload interface{}) (Envelope, error) {
	env := Envelope{
		Type:          msgType,
		ParticipantID: participantID,
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
		}
		env.Data = data
	}

	return env, nil
}
