package cart

import (
	"context"
	"fmt"

	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/mylog"
	"github.com/tnscouts/shopfront/lib/mypublisher"
	"github.com/tnscouts/shopfront/lib/mystore"
	"github.com/tnscouts/shopfront/lib/mytime"
	"github.com/tnscouts/shopfront/services/cart/cartevents"
)

type Service struct {
	cartStore mystore.Store[Cart]
	publisher mypublisher.Publisher
	nower     mytime.Nower
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(store mystore.Store[Cart], nower mytime.Nower, pub mypublisher.Publisher) *Service {
	return &Service{
		cartStore: store,
		publisher: pub,
		nower:     nower,
		logger:    mylog.New("cart"),
	}
}

func (s *Service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, cartevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", cartevents.TopicName, err)
	}

	return nil
}

// Add puts a product in the visitor's cart. A product already present gets
// its quantity raised by one, anything else is appended with quantity 1.
func (s *Service) Add(c context.Context, visitorUID string, item CartItem) error {
	now := s.nower.Now()

	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		current, exists, err := s.cartStore.Get(c, visitorUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching cart: %s", err))
		}
		if !exists {
			current = Cart{
				VisitorUID: visitorUID,
				CreatedAt:  now,
			}
		}

		merged := false
		for i := range current.Items {
			if current.Items[i].ProductUID == item.ProductUID {
				current.Items[i].Quantity++
				merged = true
				break
			}
		}
		if !merged {
			item.Quantity = 1
			current.Items = append(current.Items, item)
		}
		current.LastModified = &now

		err = s.cartStore.Put(c, visitorUID, current)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing cart: %s", err))
		}

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CartItemAdded{
			VisitorUID: visitorUID,
			ProductUID: item.ProductUID,
			Quantity:   1,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "Added product %s to cart", item.ProductUID)

	return nil
}

// Remove drops the product from the cart. Removing an absent product is not
// an error.
func (s *Service) Remove(c context.Context, visitorUID string, productUID string) error {
	now := s.nower.Now()

	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		current, exists, err := s.cartStore.Get(c, visitorUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching cart: %s", err))
		}
		if !exists {
			return nil
		}

		removed := false
		for i, item := range current.Items {
			if item.ProductUID == productUID {
				current.Items = append(current.Items[:i], current.Items[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			return nil
		}
		current.LastModified = &now

		err = s.cartStore.Put(c, visitorUID, current)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing cart: %s", err))
		}

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CartItemRemoved{
			VisitorUID: visitorUID,
			ProductUID: productUID,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "Removed product %s from cart", productUID)

	return nil
}

// UpdateQuantity sets the quantity of the matching item. A new quantity of
// zero or below removes the item instead of storing a non-positive quantity.
func (s *Service) UpdateQuantity(c context.Context, visitorUID string, productUID string, newQuantity int) error {
	if newQuantity <= 0 {
		return s.Remove(c, visitorUID, productUID)
	}

	now := s.nower.Now()

	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		current, exists, err := s.cartStore.Get(c, visitorUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching cart: %s", err))
		}
		if !exists {
			return nil
		}

		changed := false
		for i := range current.Items {
			if current.Items[i].ProductUID == productUID {
				current.Items[i].Quantity = newQuantity
				changed = true
				break
			}
		}
		if !changed {
			return nil
		}
		current.LastModified = &now

		err = s.cartStore.Put(c, visitorUID, current)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing cart: %s", err))
		}

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CartQuantityChanged{
			VisitorUID:  visitorUID,
			ProductUID:  productUID,
			NewQuantity: newQuantity,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "Set quantity of product %s to %d", productUID, newQuantity)

	return nil
}

// Clear empties the cart unconditionally.
func (s *Service) Clear(c context.Context, visitorUID string) error {
	now := s.nower.Now()

	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		current, exists, err := s.cartStore.Get(c, visitorUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching cart: %s", err))
		}
		if !exists || current.IsEmpty() {
			return nil
		}

		current.Items = nil
		current.LastModified = &now

		err = s.cartStore.Put(c, visitorUID, current)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing cart: %s", err))
		}

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CartCleared{
			VisitorUID: visitorUID,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "Cleared cart")

	return nil
}

// Get returns the visitor's cart; a visitor without one gets an empty cart.
func (s *Service) Get(c context.Context, visitorUID string) (Cart, error) {
	current, exists, err := s.cartStore.Get(c, visitorUID)
	if err != nil {
		return Cart{}, myerrors.NewInternalError(fmt.Errorf("error fetching cart: %s", err))
	}
	if !exists {
		return Cart{VisitorUID: visitorUID}, nil
	}

	return current, nil
}
