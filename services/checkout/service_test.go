package checkout

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/mypublisher"
	"github.com/tnscouts/shopfront/lib/mypubsub"
	"github.com/tnscouts/shopfront/lib/mystore"
	"github.com/tnscouts/shopfront/lib/mytime"
	"github.com/tnscouts/shopfront/services/cart"
	"github.com/tnscouts/shopfront/services/cart/cartevents"
	"github.com/tnscouts/shopfront/services/catalog"
	"github.com/tnscouts/shopfront/services/checkout/scoutapi"
	"github.com/tnscouts/shopfront/services/session"
)

const visitor = "visitor-1"

var validCreds = Credentials{Email: "akela@example.org", Password: "longenough1"}

var backendIdentity = scoutapi.LoginResponse{
	Token:    "token-123",
	UserUID:  "user-42",
	Username: "akela",
	Role:     "user",
}

type fixture struct {
	c        context.Context
	svc      *Service
	remote   *scoutapi.MockClient
	sessions *session.Service
	carts    *cart.Service
}

func setup(t *testing.T) fixture {
	c := context.TODO()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	pendingStore, cleanup, err := mystore.New[PendingPurchase](c)
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	sessionStore, cleanup, err := mystore.New[session.Session](c)
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	cartStore, cleanup, err := mystore.New[cart.Cart](c)
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	publisher := mypublisher.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	remote := scoutapi.NewMockClient(ctrl)

	subscriber, subscriberCleanup, err := mypubsub.New(c)
	assert.NoError(t, err)
	t.Cleanup(subscriberCleanup)

	sessions := session.NewService(sessionStore, nower)
	carts := cart.NewService(cartStore, nower, publisher)

	svc := NewService(pendingStore, sessions, carts, catalog.NewService(), remote, nower, publisher, subscriber)

	return fixture{c: c, svc: svc, remote: remote, sessions: sessions, carts: carts}
}

func TestGuestAddToCart(t *testing.T) {
	t.Run("guest add parks the intent, cart stays empty", func(t *testing.T) {
		f := setup(t)

		added, err := f.svc.AddProductToCart(f.c, visitor, "product-1")
		assert.NoError(t, err)
		assert.False(t, added)

		pending, exists, err := f.svc.Pending(f.c, visitor)
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "product-1", pending.ProductUID)

		basket, err := f.carts.Get(f.c, visitor)
		assert.NoError(t, err)
		assert.True(t, basket.IsEmpty())
	})

	t.Run("last intent wins", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.AddProductToCart(f.c, visitor, "product-1")
		assert.NoError(t, err)
		_, err = f.svc.AddProductToCart(f.c, visitor, "product-2")
		assert.NoError(t, err)

		pending, exists, err := f.svc.Pending(f.c, visitor)
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "product-2", pending.ProductUID)
	})

	t.Run("unknown product is rejected without storing anything", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.AddProductToCart(f.c, visitor, "product-99")
		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, myerrors.GetHttpStatus(err))

		_, exists, err := f.svc.Pending(f.c, visitor)
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("cancel drops the intent", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.AddProductToCart(f.c, visitor, "product-1")
		assert.NoError(t, err)
		assert.NoError(t, f.svc.CancelPending(f.c, visitor))

		_, exists, err := f.svc.Pending(f.c, visitor)
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestAuthenticatedAddToCart(t *testing.T) {
	f := setup(t)
	assert.NoError(t, f.sessions.SetAuth(f.c, visitor, "token-123", "user-42", "akela", "akela@example.org", "user"))

	f.remote.EXPECT().AddCartItem(gomock.Any(), scoutapi.AddCartItemRequest{
		ProductUID: "product-1",
		UserUID:    "user-42",
		Quantity:   1,
	}).Return(nil)

	added, err := f.svc.AddProductToCart(f.c, visitor, "product-1")
	assert.NoError(t, err)
	assert.True(t, added)

	basket, err := f.carts.Get(f.c, visitor)
	assert.NoError(t, err)
	assert.Len(t, basket.Items, 1)
	assert.Equal(t, "product-1", basket.Items[0].ProductUID)
	assert.Equal(t, 1, basket.Items[0].Quantity)

	_, exists, err := f.svc.Pending(f.c, visitor)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestLoginValidation(t *testing.T) {
	// No expectations on the remote: any backend call fails the test.
	t.Run("missing email", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.Login(f.c, visitor, Credentials{Password: "longenough1"})
		assert.Equal(t, http.StatusBadRequest, myerrors.GetHttpStatus(err))
	})

	t.Run("missing password", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.Login(f.c, visitor, Credentials{Email: "akela@example.org"})
		assert.Equal(t, http.StatusBadRequest, myerrors.GetHttpStatus(err))
	})

	t.Run("short password never reaches the backend", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.Login(f.c, visitor, Credentials{Email: "akela@example.org", Password: "short"})
		assert.Equal(t, http.StatusBadRequest, myerrors.GetHttpStatus(err))

		_, authenticated, err := f.sessions.Current(f.c, visitor)
		assert.NoError(t, err)
		assert.False(t, authenticated)
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials reach the backend and establish a session", func(t *testing.T) {
		f := setup(t)

		f.remote.EXPECT().Login(gomock.Any(), scoutapi.LoginRequest{
			Email:    validCreds.Email,
			Password: validCreds.Password,
		}).Return(backendIdentity, nil)

		result, err := f.svc.Login(f.c, visitor, validCreds)
		assert.NoError(t, err)
		assert.Equal(t, "akela", result.Username)
		assert.False(t, result.Replayed)

		current, authenticated, err := f.sessions.Current(f.c, visitor)
		assert.NoError(t, err)
		assert.True(t, authenticated)
		assert.Equal(t, "user-42", current.UserUID)
		assert.Equal(t, "token-123", current.Token)
	})

	t.Run("rejected credentials leave no session and allow a retry", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.AddProductToCart(f.c, visitor, "product-1")
		assert.NoError(t, err)

		f.remote.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(scoutapi.LoginResponse{}, &scoutapi.RemoteError{Kind: scoutapi.ErrorKindAuthRejected, Message: "Invalid credentials"})

		_, err = f.svc.Login(f.c, visitor, validCreds)
		assert.Equal(t, http.StatusForbidden, myerrors.GetHttpStatus(err))

		_, authenticated, err := f.sessions.Current(f.c, visitor)
		assert.NoError(t, err)
		assert.False(t, authenticated)

		pending, exists, err := f.svc.Pending(f.c, visitor)
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "product-1", pending.ProductUID)

		// Retry with the backend now accepting.
		f.remote.EXPECT().Login(gomock.Any(), gomock.Any()).Return(backendIdentity, nil)
		f.remote.EXPECT().AddCartItem(gomock.Any(), gomock.Any()).Return(nil)

		result, err := f.svc.Login(f.c, visitor, validCreds)
		assert.NoError(t, err)
		assert.True(t, result.Replayed)
	})

	t.Run("transient backend failure maps to unavailable", func(t *testing.T) {
		f := setup(t)

		f.remote.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(scoutapi.LoginResponse{}, &scoutapi.RemoteError{Kind: scoutapi.ErrorKindTransient, Message: "gateway timeout"})

		_, err := f.svc.Login(f.c, visitor, validCreds)
		assert.Equal(t, http.StatusServiceUnavailable, myerrors.GetHttpStatus(err))
	})
}

func TestLoginReplaysPendingPurchase(t *testing.T) {
	f := setup(t)

	_, err := f.svc.AddProductToCart(f.c, visitor, "product-1")
	assert.NoError(t, err)

	f.remote.EXPECT().Login(gomock.Any(), gomock.Any()).Return(backendIdentity, nil)
	f.remote.EXPECT().AddCartItem(gomock.Any(), scoutapi.AddCartItemRequest{
		ProductUID: "product-1",
		UserUID:    "user-42",
		Quantity:   1,
	}).Return(nil)

	result, err := f.svc.Login(f.c, visitor, validCreds)
	assert.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, "product-1", result.ProductUID)

	// Exactly one entry with quantity 1 in the mirrored cart.
	basket, err := f.carts.Get(f.c, visitor)
	assert.NoError(t, err)
	assert.Len(t, basket.Items, 1)
	assert.Equal(t, "product-1", basket.Items[0].ProductUID)
	assert.Equal(t, 1, basket.Items[0].Quantity)

	// The intent is consumed exactly once.
	_, exists, err := f.svc.Pending(f.c, visitor)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestReplayFailureKeepsEverything(t *testing.T) {
	f := setup(t)

	_, err := f.svc.AddProductToCart(f.c, visitor, "product-1")
	assert.NoError(t, err)

	f.remote.EXPECT().Login(gomock.Any(), gomock.Any()).Return(backendIdentity, nil)
	f.remote.EXPECT().AddCartItem(gomock.Any(), gomock.Any()).
		Return(&scoutapi.RemoteError{Kind: scoutapi.ErrorKindTransient, Message: "bad gateway"})

	_, err = f.svc.Login(f.c, visitor, validCreds)
	assert.Error(t, err)
	replayErr := &ReplayError{}
	assert.ErrorAs(t, err, &replayErr)
	assert.Equal(t, "product-1", replayErr.ProductUID)

	// The session survives the failed replay.
	_, authenticated, err := f.sessions.Current(f.c, visitor)
	assert.NoError(t, err)
	assert.True(t, authenticated)

	// So does the intent, for a later retry.
	pending, exists, err := f.svc.Pending(f.c, visitor)
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "product-1", pending.ProductUID)

	// Nothing leaked into the local cart.
	basket, err := f.carts.Get(f.c, visitor)
	assert.NoError(t, err)
	assert.True(t, basket.IsEmpty())
}

func TestDuplicateLoginSubmission(t *testing.T) {
	f := setup(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.remote.EXPECT().Login(gomock.Any(), gomock.Any()).
		DoAndReturn(func(c context.Context, req scoutapi.LoginRequest) (scoutapi.LoginResponse, error) {
			close(started)
			<-release
			return backendIdentity, nil
		})

	firstDone := make(chan error)
	go func() {
		_, err := f.svc.Login(f.c, visitor, validCreds)
		firstDone <- err
	}()

	// Second submission while the first is still talking to the backend.
	<-started
	_, err := f.svc.Login(f.c, visitor, validCreds)
	assert.Equal(t, http.StatusTooManyRequests, myerrors.GetHttpStatus(err))

	close(release)
	assert.NoError(t, <-firstDone)
}

func TestDuplicateSignupSubmission(t *testing.T) {
	f := setup(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.remote.EXPECT().Register(gomock.Any(), gomock.Any()).
		DoAndReturn(func(c context.Context, req scoutapi.RegisterRequest) error {
			close(started)
			<-release
			return nil
		})

	registration := Registration{
		Email:    "akela@example.org",
		Password: "longenough1",
		Username: "akela",
		Role:     "user",
	}

	firstDone := make(chan error)
	go func() {
		firstDone <- f.svc.Signup(f.c, visitor, registration)
	}()

	// Second submission while the first is still talking to the backend.
	<-started
	err := f.svc.Signup(f.c, visitor, registration)
	assert.Equal(t, http.StatusTooManyRequests, myerrors.GetHttpStatus(err))

	close(release)
	assert.NoError(t, <-firstDone)
}

func TestStalePendingRetiredByCartEvent(t *testing.T) {
	t.Run("matching cart add retires the pending purchase", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.AddProductToCart(f.c, visitor, "product-1")
		assert.NoError(t, err)

		err = f.svc.OnCartItemAdded(f.c, cartevents.TopicName, cartevents.CartItemAdded{
			VisitorUID: visitor,
			ProductUID: "product-1",
			Quantity:   1,
		})
		assert.NoError(t, err)

		_, exists, err := f.svc.Pending(f.c, visitor)
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("add of a different product leaves the pending purchase", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.AddProductToCart(f.c, visitor, "product-1")
		assert.NoError(t, err)

		err = f.svc.OnCartItemAdded(f.c, cartevents.TopicName, cartevents.CartItemAdded{
			VisitorUID: visitor,
			ProductUID: "product-2",
			Quantity:   1,
		})
		assert.NoError(t, err)

		pending, exists, err := f.svc.Pending(f.c, visitor)
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "product-1", pending.ProductUID)
	})

	t.Run("idempotent for a visitor without pending", func(t *testing.T) {
		f := setup(t)

		err := f.svc.OnCartItemAdded(f.c, cartevents.TopicName, cartevents.CartItemAdded{
			VisitorUID: visitor,
			ProductUID: "product-1",
			Quantity:   1,
		})
		assert.NoError(t, err)
	})
}

func TestSignup(t *testing.T) {
	registration := Registration{
		Email:    "akela@example.org",
		Password: "longenough1",
		Username: "akela",
		Role:     "user",
	}

	t.Run("valid registration reaches the backend", func(t *testing.T) {
		f := setup(t)

		f.remote.EXPECT().Register(gomock.Any(), scoutapi.RegisterRequest{
			Email:    registration.Email,
			Password: registration.Password,
			Username: registration.Username,
			Role:     registration.Role,
		}).Return(nil)

		assert.NoError(t, f.svc.Signup(f.c, visitor, registration))

		// Registering does not log in.
		_, authenticated, err := f.sessions.Current(f.c, visitor)
		assert.NoError(t, err)
		assert.False(t, authenticated)
	})

	t.Run("short password never reaches the backend", func(t *testing.T) {
		f := setup(t)

		short := registration
		short.Password = "short"
		err := f.svc.Signup(f.c, visitor, short)
		assert.Equal(t, http.StatusBadRequest, myerrors.GetHttpStatus(err))
	})

	t.Run("duplicate identity surfaces the backend message verbatim", func(t *testing.T) {
		f := setup(t)

		f.remote.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(&scoutapi.RemoteError{Kind: scoutapi.ErrorKindDuplicateIdentity, Message: "Email already in use"})

		err := f.svc.Signup(f.c, visitor, registration)
		assert.Equal(t, http.StatusConflict, myerrors.GetHttpStatus(err))
		assert.Contains(t, err.Error(), "Email already in use")
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears the session but not the cart", func(t *testing.T) {
		f := setup(t)
		assert.NoError(t, f.sessions.SetAuth(f.c, visitor, "token-123", "user-42", "akela", "akela@example.org", "user"))

		f.remote.EXPECT().AddCartItem(gomock.Any(), gomock.Any()).Return(nil)
		_, err := f.svc.AddProductToCart(f.c, visitor, "product-1")
		assert.NoError(t, err)

		assert.NoError(t, f.svc.Logout(f.c, visitor))

		_, authenticated, err := f.sessions.Current(f.c, visitor)
		assert.NoError(t, err)
		assert.False(t, authenticated)

		basket, err := f.carts.Get(f.c, visitor)
		assert.NoError(t, err)
		assert.Len(t, basket.Items, 1)
	})

	t.Run("logout without a session is a no-op", func(t *testing.T) {
		f := setup(t)
		assert.NoError(t, f.svc.Logout(f.c, visitor))
	})
}
