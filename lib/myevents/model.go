package myevents

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

type EventEnvelope struct {
	UID           string
	CreatedAt     time.Time
	Topic         string
	AggregateUID  string
	EventTypeName string
	EventPayload  string `datastore:",noindex"`
	Published     bool
}

func (e EventEnvelope) String() string {
	return e.Topic + "." + e.EventTypeName + "." + e.AggregateUID
}

type Event interface {
	GetEventTypeName() string
	GetAggregateName() string
}

// PushRequest is the shape of a pubsub push delivery.
type PushRequest struct {
	Message      PushMessage `json:"message"`
	Subscription string      `json:"subscription"`
}

type PushMessage struct {
	Data []byte `json:"data"`
}

func ParseEventEnvelope(reader io.Reader) (EventEnvelope, error) {
	pushRequest := PushRequest{}
	err := json.NewDecoder(reader).Decode(&pushRequest)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("error parsing push request: %s", err)
	}

	envelope := EventEnvelope{}
	err = json.Unmarshal(pushRequest.Message.Data, &envelope)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("error parsing event envelope: %s", err)
	}

	return envelope, nil
}
