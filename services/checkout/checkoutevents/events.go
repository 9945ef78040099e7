package checkoutevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/myevents"
)

const (
	TopicName        = "checkout"
	registeredName   = TopicName + ".user.registered"
	loggedInName     = TopicName + ".user.loggedin"
	loggedOutName    = TopicName + ".user.loggedout"
	replayedName     = TopicName + ".pending.replayed"
	replayFailedName = TopicName + ".pending.replayfailed"
)

type CheckoutEventService interface {
	Subscribe(c context.Context) error
	OnUserRegistered(c context.Context, topic string, event UserRegistered) error
	OnUserLoggedIn(c context.Context, topic string, event UserLoggedIn) error
	OnUserLoggedOut(c context.Context, topic string, event UserLoggedOut) error
	OnPendingPurchaseReplayed(c context.Context, topic string, event PendingPurchaseReplayed) error
	OnPendingPurchaseReplayFailed(c context.Context, topic string, event PendingPurchaseReplayFailed) error
}

func DispatchEvent(c context.Context, reader io.Reader, service CheckoutEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case registeredName:
		event := UserRegistered{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnUserRegistered(c, envelope.Topic, event)
	case loggedInName:
		event := UserLoggedIn{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnUserLoggedIn(c, envelope.Topic, event)
	case loggedOutName:
		event := UserLoggedOut{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnUserLoggedOut(c, envelope.Topic, event)
	case replayedName:
		event := PendingPurchaseReplayed{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnPendingPurchaseReplayed(c, envelope.Topic, event)
	case replayFailedName:
		event := PendingPurchaseReplayFailed{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnPendingPurchaseReplayFailed(c, envelope.Topic, event)
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unknown event type %s", envelope.EventTypeName))
	}
}

type UserRegistered struct {
	VisitorUID string
	Email      string
	Username   string
	Role       string
}

func (e UserRegistered) GetEventTypeName() string {
	return registeredName
}

func (e UserRegistered) GetAggregateName() string {
	return e.VisitorUID
}

type UserLoggedIn struct {
	VisitorUID string
	UserUID    string
	Email      string
}

func (e UserLoggedIn) GetEventTypeName() string {
	return loggedInName
}

func (e UserLoggedIn) GetAggregateName() string {
	return e.VisitorUID
}

type UserLoggedOut struct {
	VisitorUID string
	UserUID    string
}

func (e UserLoggedOut) GetEventTypeName() string {
	return loggedOutName
}

func (e UserLoggedOut) GetAggregateName() string {
	return e.VisitorUID
}

type PendingPurchaseReplayed struct {
	VisitorUID string
	ProductUID string
	UserUID    string
}

func (e PendingPurchaseReplayed) GetEventTypeName() string {
	return replayedName
}

func (e PendingPurchaseReplayed) GetAggregateName() string {
	return e.VisitorUID
}

type PendingPurchaseReplayFailed struct {
	VisitorUID string
	ProductUID string
	UserUID    string
	Reason     string
}

func (e PendingPurchaseReplayFailed) GetEventTypeName() string {
	return replayFailedName
}

func (e PendingPurchaseReplayFailed) GetAggregateName() string {
	return e.VisitorUID
}
