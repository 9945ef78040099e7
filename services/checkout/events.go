package checkout

import (
	"context"
	"fmt"

	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/myhttp"
	"github.com/tnscouts/shopfront/lib/mylog"
	"github.com/tnscouts/shopfront/services/cart/cartevents"
)

// Subscribe registers this service as a listener for cart mutations, so a
// parked purchase intent can be retired once its product reaches the cart by
// another route.
func (s *Service) Subscribe(c context.Context) error {
	err := s.subscriber.Subscribe(c, cartevents.TopicName, myhttp.GuessHostnameWithScheme()+"/checkout/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", cartevents.TopicName, err)
	}

	return nil
}

// OnCartItemAdded retires a pending purchase that has become stale: when the
// parked product lands in the cart through any other path, a later login must
// not replay it a second time. Must be idempotent.
func (s *Service) OnCartItemAdded(c context.Context, topic string, event cartevents.CartItemAdded) error {
	err := s.pendingStore.RunInTransaction(c, func(c context.Context) error {
		pending, exists, err := s.pendingStore.Get(c, event.VisitorUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching pending purchase: %s", err))
		}
		if !exists || pending.ProductUID != event.ProductUID {
			return nil
		}

		err = s.pendingStore.Remove(c, event.VisitorUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error removing pending purchase: %s", err))
		}

		s.logger.Log(c, event.VisitorUID, mylog.SeverityInfo, "Retired stale pending purchase of product %s", event.ProductUID)

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Service) OnCartItemRemoved(c context.Context, topic string, event cartevents.CartItemRemoved) error {
	return nil
}

func (s *Service) OnCartQuantityChanged(c context.Context, topic string, event cartevents.CartQuantityChanged) error {
	return nil
}

func (s *Service) OnCartCleared(c context.Context, topic string, event cartevents.CartCleared) error {
	return nil
}
