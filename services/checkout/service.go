package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/mylog"
	"github.com/tnscouts/shopfront/lib/mypublisher"
	"github.com/tnscouts/shopfront/lib/mypubsub"
	"github.com/tnscouts/shopfront/lib/mystore"
	"github.com/tnscouts/shopfront/lib/mytime"
	"github.com/tnscouts/shopfront/services/cart"
	"github.com/tnscouts/shopfront/services/catalog"
	"github.com/tnscouts/shopfront/services/checkout/checkoutevents"
	"github.com/tnscouts/shopfront/services/checkout/scoutapi"
	"github.com/tnscouts/shopfront/services/session"
)

// No remote call may outlive this bound. The visitor gets an answer even when
// the backend hangs.
const maxRemoteCallDuration = 4 * time.Second

// Service orchestrates the handoff between the anonymous browsing flows and
// the authenticated backend: it gates add-to-cart on a session, parks the
// purchase intent of guests, and replays that intent right after login.
type Service struct {
	pendingStore   mystore.Store[PendingPurchase]
	sessionService *session.Service
	cartService    *cart.Service
	catalogService *catalog.Service
	remote         scoutapi.Client
	publisher      mypublisher.Publisher
	subscriber     mypubsub.PubSub
	nower          mytime.Nower
	logger         mylog.Logger

	mutex               sync.Mutex
	submissionsInFlight map[string]bool
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(pendingStore mystore.Store[PendingPurchase], sessionService *session.Service,
	cartService *cart.Service, catalogService *catalog.Service, remote scoutapi.Client,
	nower mytime.Nower, pub mypublisher.Publisher, subscriber mypubsub.PubSub) *Service {
	return &Service{
		pendingStore:        pendingStore,
		sessionService:      sessionService,
		cartService:         cartService,
		catalogService:      catalogService,
		remote:              remote,
		publisher:           pub,
		subscriber:          subscriber,
		nower:               nower,
		logger:              mylog.New("checkout"),
		submissionsInFlight: map[string]bool{},
	}
}

func (s *Service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

// AddProductToCart is the single entry point for the add-to-cart button.
// An authenticated visitor gets the product pushed to the backend and
// mirrored into the local cart. A guest gets the intent parked instead and
// must authenticate first; nothing enters the cart yet. The returned bool
// tells whether the product actually landed in the cart.
func (s *Service) AddProductToCart(c context.Context, visitorUID string, productUID string) (bool, error) {
	product, err := s.catalogService.MustGet(c, productUID)
	if err != nil {
		return false, err
	}

	currentSession, authenticated, err := s.sessionService.Current(c, visitorUID)
	if err != nil {
		return false, err
	}

	if !authenticated {
		err = s.storePending(c, visitorUID, product.UID)
		if err != nil {
			return false, err
		}
		return false, nil
	}

	err = s.addRemoteCartItem(c, product.UID, currentSession.UserUID)
	if err != nil {
		return false, mapRemoteError(err)
	}

	err = s.cartService.Add(c, visitorUID, cartItemFor(product))
	if err != nil {
		return false, err
	}

	return true, nil
}

// Login authenticates the visitor against the backend and, when a pending
// purchase is parked, replays it. Validation failures never reach the
// backend. A second submission while one is underway is rejected without
// touching any state.
func (s *Service) Login(c context.Context, visitorUID string, creds Credentials) (LoginResult, error) {
	err := s.acquireSubmissionSlot(visitorUID)
	if err != nil {
		return LoginResult{}, err
	}
	defer s.releaseSubmissionSlot(visitorUID)

	err = validateCredentials(creds)
	if err != nil {
		return LoginResult{}, err
	}

	remoteCtx, cancel := context.WithTimeout(c, maxRemoteCallDuration)
	defer cancel()
	resp, err := s.remote.Login(remoteCtx, scoutapi.LoginRequest{
		Email:    creds.Email,
		Password: creds.Password,
	})
	if err != nil {
		s.logger.Log(c, visitorUID, mylog.SeverityWarn, "Login rejected by backend: %s", err)
		return LoginResult{}, mapRemoteError(err)
	}

	err = s.sessionService.SetAuth(c, visitorUID, resp.Token, resp.UserUID, resp.Username, creds.Email, resp.Role)
	if err != nil {
		return LoginResult{}, err
	}

	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.UserLoggedIn{
		VisitorUID: visitorUID,
		UserUID:    resp.UserUID,
		Email:      creds.Email,
	})
	if err != nil {
		return LoginResult{}, myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "User %s logged in", resp.UserUID)

	result := LoginResult{Username: resp.Username}

	pending, exists, err := s.Pending(c, visitorUID)
	if !exists || err != nil {
		return result, err
	}

	err = s.replayPending(c, visitorUID, resp.UserUID, pending)
	if err != nil {
		return result, err
	}

	result.Replayed = true
	result.ProductUID = pending.ProductUID

	return result, nil
}

// replayPending pushes the parked product to the backend under the freshly
// established identity and mirrors it into the local cart. On failure the
// pending purchase and the session both stay: the visitor retries from the
// cart page.
func (s *Service) replayPending(c context.Context, visitorUID string, userUID string, pending PendingPurchase) error {
	err := s.addRemoteCartItem(c, pending.ProductUID, userUID)
	if err != nil {
		s.logger.Log(c, visitorUID, mylog.SeverityWarn, "Replay of product %s failed: %s", pending.ProductUID, err)

		publishErr := s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.PendingPurchaseReplayFailed{
			VisitorUID: visitorUID,
			ProductUID: pending.ProductUID,
			UserUID:    userUID,
			Reason:     err.Error(),
		})
		if publishErr != nil {
			s.logger.Log(c, visitorUID, mylog.SeverityError, "Error publishing event: %s", publishErr)
		}

		return &ReplayError{
			ProductUID: pending.ProductUID,
			Cause:      mapRemoteError(err),
		}
	}

	product, err := s.catalogService.MustGet(c, pending.ProductUID)
	if err != nil {
		return err
	}

	err = s.cartService.Add(c, visitorUID, cartItemFor(product))
	if err != nil {
		return err
	}

	err = s.pendingStore.Remove(c, visitorUID)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error removing pending purchase: %s", err))
	}

	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.PendingPurchaseReplayed{
		VisitorUID: visitorUID,
		ProductUID: pending.ProductUID,
		UserUID:    userUID,
	})
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "Replayed pending purchase of product %s", pending.ProductUID)

	return nil
}

// Signup registers a new account with the backend. The visitor still has to
// log in afterwards; no session is established here. Like Login, at most one
// submission per visitor may be talking to the backend at a time.
func (s *Service) Signup(c context.Context, visitorUID string, registration Registration) error {
	err := s.acquireSubmissionSlot(visitorUID)
	if err != nil {
		return err
	}
	defer s.releaseSubmissionSlot(visitorUID)

	err = validateRegistration(registration)
	if err != nil {
		return err
	}

	remoteCtx, cancel := context.WithTimeout(c, maxRemoteCallDuration)
	defer cancel()
	err = s.remote.Register(remoteCtx, scoutapi.RegisterRequest{
		Email:    registration.Email,
		Password: registration.Password,
		Username: registration.Username,
		Role:     registration.Role,
	})
	if err != nil {
		s.logger.Log(c, visitorUID, mylog.SeverityWarn, "Registration rejected by backend: %s", err)
		return mapRemoteError(err)
	}

	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.UserRegistered{
		VisitorUID: visitorUID,
		Email:      registration.Email,
		Username:   registration.Username,
		Role:       registration.Role,
	})
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
	}

	s.logger.Log(c, visitorUID, mylog.SeverityInfo, "Registered user %s", registration.Username)

	return nil
}

// Logout drops the session only. The cart and any pending purchase survive.
func (s *Service) Logout(c context.Context, visitorUID string) error {
	currentSession, authenticated, err := s.sessionService.Current(c, visitorUID)
	if err != nil {
		return err
	}
	if !authenticated {
		return nil
	}

	err = s.sessionService.ClearAuth(c, visitorUID)
	if err != nil {
		return err
	}

	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.UserLoggedOut{
		VisitorUID: visitorUID,
		UserUID:    currentSession.UserUID,
	})
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
	}

	return nil
}

func (s *Service) addRemoteCartItem(c context.Context, productUID string, userUID string) error {
	remoteCtx, cancel := context.WithTimeout(c, maxRemoteCallDuration)
	defer cancel()

	return s.remote.AddCartItem(remoteCtx, scoutapi.AddCartItemRequest{
		ProductUID: productUID,
		UserUID:    userUID,
		Quantity:   1,
	})
}

func (s *Service) acquireSubmissionSlot(visitorUID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.submissionsInFlight[visitorUID] {
		return myerrors.NewTooManyRequestsError(fmt.Errorf("a submission for visitor %s is already underway", visitorUID))
	}
	s.submissionsInFlight[visitorUID] = true

	return nil
}

func (s *Service) releaseSubmissionSlot(visitorUID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.submissionsInFlight, visitorUID)
}

func validateCredentials(creds Credentials) error {
	if creds.Email == "" || creds.Password == "" {
		return myerrors.NewInvalidInputErrorf("email and password are required")
	}
	if len(creds.Password) < minPasswordLength {
		return myerrors.NewInvalidInputErrorf("password must be at least %d characters", minPasswordLength)
	}

	return nil
}

func validateRegistration(registration Registration) error {
	if registration.Email == "" || registration.Username == "" || registration.Password == "" {
		return myerrors.NewInvalidInputErrorf("email, username and password are required")
	}
	if len(registration.Password) < minPasswordLength {
		return myerrors.NewInvalidInputErrorf("password must be at least %d characters", minPasswordLength)
	}
	if registration.Role != "user" && registration.Role != "admin" {
		return myerrors.NewInvalidInputErrorf("unknown role %s", registration.Role)
	}

	return nil
}

func mapRemoteError(err error) error {
	switch {
	case scoutapi.IsDuplicateIdentity(err):
		// The backend's own wording is what the visitor must see.
		return myerrors.NewConflictError(errors.New(scoutapi.RemoteMessage(err)))
	case scoutapi.IsAuthRejected(err):
		return myerrors.NewAuthenticationError(errors.New("credentials were not accepted"))
	case scoutapi.IsTransient(err):
		return myerrors.NewUnavailableError(errors.New("the shop backend is temporarily unreachable, please try again"))
	default:
		return myerrors.NewInternalError(err)
	}
}

func cartItemFor(product catalog.Product) cart.CartItem {
	return cart.CartItem{
		ProductUID: product.UID,
		Name:       product.Name.EN,
		Price:      product.Price,
	}
}
