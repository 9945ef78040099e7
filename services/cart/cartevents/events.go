package cartevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/myevents"
)

const (
	TopicName           = "cart"
	itemAddedName       = TopicName + ".item.added"
	itemRemovedName     = TopicName + ".item.removed"
	quantityChangedName = TopicName + ".item.quantity.changed"
	clearedName         = TopicName + ".cleared"
)

type CartEventService interface {
	Subscribe(c context.Context) error
	OnCartItemAdded(c context.Context, topic string, event CartItemAdded) error
	OnCartItemRemoved(c context.Context, topic string, event CartItemRemoved) error
	OnCartQuantityChanged(c context.Context, topic string, event CartQuantityChanged) error
	OnCartCleared(c context.Context, topic string, event CartCleared) error
}

func DispatchEvent(c context.Context, reader io.Reader, service CartEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case itemAddedName:
		event := CartItemAdded{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnCartItemAdded(c, envelope.Topic, event)
	case itemRemovedName:
		event := CartItemRemoved{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnCartItemRemoved(c, envelope.Topic, event)
	case quantityChangedName:
		event := CartQuantityChanged{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnCartQuantityChanged(c, envelope.Topic, event)
	case clearedName:
		event := CartCleared{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnCartCleared(c, envelope.Topic, event)
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unknown event type %s", envelope.EventTypeName))
	}
}

type CartItemAdded struct {
	VisitorUID string
	ProductUID string
	Quantity   int
}

func (e CartItemAdded) GetEventTypeName() string {
	return itemAddedName
}

func (e CartItemAdded) GetAggregateName() string {
	return e.VisitorUID
}

type CartItemRemoved struct {
	VisitorUID string
	ProductUID string
}

func (e CartItemRemoved) GetEventTypeName() string {
	return itemRemovedName
}

func (e CartItemRemoved) GetAggregateName() string {
	return e.VisitorUID
}

type CartQuantityChanged struct {
	VisitorUID  string
	ProductUID  string
	NewQuantity int
}

func (e CartQuantityChanged) GetEventTypeName() string {
	return quantityChangedName
}

func (e CartQuantityChanged) GetAggregateName() string {
	return e.VisitorUID
}

type CartCleared struct {
	VisitorUID string
}

func (e CartCleared) GetEventTypeName() string {
	return clearedName
}

func (e CartCleared) GetAggregateName() string {
	return e.VisitorUID
}
