package session

import (
	"context"
	"fmt"

	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/mylog"
	"github.com/tnscouts/shopfront/lib/mystore"
	"github.com/tnscouts/shopfront/lib/mytime"
)

// Service owns the durable session records: one record per visitor, written
// and removed as a whole.
type Service struct {
	sessionStore mystore.Store[Session]
	nower        mytime.Nower
	logger       mylog.Logger
}

func NewService(store mystore.Store[Session], nower mytime.Nower) *Service {
	return &Service{
		sessionStore: store,
		nower:        nower,
		logger:       mylog.New("session"),
	}
}

// SetAuth replaces any existing session for this visitor. All identity fields
// are persisted in one transaction so a reader never observes a partial
// session.
func (s *Service) SetAuth(c context.Context, visitorUID string, token string, userUID string, username string, email string, role string) error {
	if token == "" || userUID == "" || username == "" {
		return myerrors.NewInvalidInputError(fmt.Errorf("refusing to store partial session for visitor %s", visitorUID))
	}

	now := s.nower.Now()
	newSession := Session{
		VisitorUID:   visitorUID,
		Token:        token,
		UserUID:      userUID,
		Username:     username,
		Email:        email,
		Role:         role,
		CreatedAt:    now,
		LastModified: &now,
	}

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		return s.sessionStore.Put(c, visitorUID, newSession)
	})
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing session: %s", err))
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "Stored session for user %s", userUID)

	return nil
}

// ClearAuth removes the session, durable copy included. Clearing an absent
// session is not an error.
func (s *Service) ClearAuth(c context.Context, visitorUID string) error {
	err := s.sessionStore.Remove(c, visitorUID)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error removing session: %s", err))
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "Cleared session")

	return nil
}

// Current returns the visitor's session, or false when unauthenticated.
func (s *Service) Current(c context.Context, visitorUID string) (Session, bool, error) {
	current, exists, err := s.sessionStore.Get(c, visitorUID)
	if err != nil {
		return Session{}, false, myerrors.NewInternalError(fmt.Errorf("error fetching session: %s", err))
	}
	if !exists {
		return Session{}, false, nil
	}

	return current, true, nil
}
