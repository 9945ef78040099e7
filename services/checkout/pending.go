package checkout

import (
	"context"
	"fmt"

	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/mylog"
)

// storePending records the visitor's purchase intent. A second intent simply
// overwrites the first: the last product wins.
func (s *Service) storePending(c context.Context, visitorUID string, productUID string) error {
	pending := PendingPurchase{
		VisitorUID: visitorUID,
		ProductUID: productUID,
		CreatedAt:  s.nower.Now(),
	}

	err := s.pendingStore.Put(c, visitorUID, pending)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing pending purchase: %s", err))
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "Stored pending purchase of product %s", productUID)

	return nil
}

// Pending returns the visitor's stored purchase intent, if any.
func (s *Service) Pending(c context.Context, visitorUID string) (PendingPurchase, bool, error) {
	pending, exists, err := s.pendingStore.Get(c, visitorUID)
	if err != nil {
		return PendingPurchase{}, false, myerrors.NewInternalError(fmt.Errorf("error fetching pending purchase: %s", err))
	}
	if !exists {
		return PendingPurchase{}, false, nil
	}

	return pending, true, nil
}

// CancelPending drops the purchase intent. Cancelling when nothing is pending
// is not an error.
func (s *Service) CancelPending(c context.Context, visitorUID string) error {
	err := s.pendingStore.Remove(c, visitorUID)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error removing pending purchase: %s", err))
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "Cancelled pending purchase")

	return nil
}
