package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/tnscouts/shopfront/lib/mypublisher"
	"github.com/tnscouts/shopfront/lib/mystore"
	"github.com/tnscouts/shopfront/lib/mytime"
	"github.com/tnscouts/shopfront/lib/myuuid"
)

func setupWeb(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, *Service) {
	c := context.TODO()

	store, cleanup, err := mystore.New[Cart](c)
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	uuider := myuuid.NewMockUUIDer(ctrl)
	uuider.EXPECT().Create().Return("visitor-1").AnyTimes()

	publisher := mypublisher.NewMockPublisher(ctrl)
	publisher.EXPECT().CreateTopic(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	web := NewWebService(store, nower, uuider, publisher)
	router := mux.NewRouter()
	err = web.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, web.Service()
}

func doCartRequest(router *mux.Router, method string, path string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	request, _ := http.NewRequest(method, path, body)
	request.Host = "localhost:8888"
	if form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	request.AddCookie(&http.Cookie{Name: "visitorUID", Value: "visitor-1"})
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func TestCartPage(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _ := setupWeb(t, ctrl)

		// when
		response := doCartRequest(router, http.MethodGet, "/cart", nil)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "Your cart is empty")
	})

	t.Run("filled cart shows items and total", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, svc := setupWeb(t, ctrl)

		// given
		assert.NoError(t, svc.Add(c, "visitor-1", racket))
		assert.NoError(t, svc.Add(c, "visitor-1", racket))

		// when
		response := doCartRequest(router, http.MethodGet, "/cart", nil)

		// then
		assert.Equal(t, 200, response.Code)
		got := response.Body.String()
		assert.Contains(t, got, "Smartphone X")
		assert.Contains(t, got, "Total (2 items)")
	})

	t.Run("warning from the query string is shown", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _ := setupWeb(t, ctrl)

		// when
		response := doCartRequest(router, http.MethodGet, "/cart?warning=Something+went+wrong", nil)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "Something went wrong")
	})
}

func TestCartMutationEndpoints(t *testing.T) {
	t.Run("update quantity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, svc := setupWeb(t, ctrl)

		// given
		assert.NoError(t, svc.Add(c, "visitor-1", racket))

		// when
		response := doCartRequest(router, http.MethodPost, "/cart/item/product-1/quantity",
			url.Values{"newQuantity": {"4"}})

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		got, err := svc.Get(c, "visitor-1")
		assert.NoError(t, err)
		assert.Equal(t, 4, got.Items[0].Quantity)
	})

	t.Run("remove item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, svc := setupWeb(t, ctrl)

		// given
		assert.NoError(t, svc.Add(c, "visitor-1", racket))

		// when
		response := doCartRequest(router, http.MethodPost, "/cart/item/product-1/remove", url.Values{})

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		got, err := svc.Get(c, "visitor-1")
		assert.NoError(t, err)
		assert.True(t, got.IsEmpty())
	})

	t.Run("clear cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, svc := setupWeb(t, ctrl)

		// given
		assert.NoError(t, svc.Add(c, "visitor-1", racket))
		assert.NoError(t, svc.Add(c, "visitor-1", balls))

		// when
		response := doCartRequest(router, http.MethodPost, "/cart/clear", url.Values{})

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.Equal(t, "http://localhost:8888/cart", response.Header().Get("Location"))
		got, err := svc.Get(c, "visitor-1")
		assert.NoError(t, err)
		assert.True(t, got.IsEmpty())
	})
}
