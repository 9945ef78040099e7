package cart

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/tnscouts/shopfront/lib/mycontext"
	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/myhttp"
	"github.com/tnscouts/shopfront/lib/mylog"
	"github.com/tnscouts/shopfront/lib/mypublisher"
	"github.com/tnscouts/shopfront/lib/mystore"
	"github.com/tnscouts/shopfront/lib/mytime"
	"github.com/tnscouts/shopfront/lib/myuuid"
)

type webService struct {
	service *Service
	uuider  myuuid.UUIDer
	logger  mylog.Logger
}

func NewWebService(store mystore.Store[Cart], nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher) *webService {
	return &webService{
		service: NewService(store, nower, pub),
		uuider:  uuider,
		logger:  mylog.New("cartweb"),
	}
}

// Service exposes the underlying cart operations to other components.
func (s *webService) Service() *Service {
	return s.service
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/cart", s.cartPage()).Methods("GET")
	router.HandleFunc("/cart/item/{productUID}/quantity", s.updateQuantityPage()).Methods("POST")
	router.HandleFunc("/cart/item/{productUID}/remove", s.removeItemPage()).Methods("POST")
	router.HandleFunc("/cart/clear", s.clearCartPage()).Methods("POST")

	return s.service.CreateTopics(c)
}

//go:embed templates
var templateFolder embed.FS
var (
	cartPageTemplate *template.Template
)

func init() {
	cartPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/cart.html"))
}

func (s *webService) visitorUID(w http.ResponseWriter, r *http.Request) string {
	uid, found := myhttp.VisitorUID(r)
	if !found {
		uid = s.uuider.Create()
		myhttp.SetVisitorUID(w, uid)
	}
	return uid
}

func (s *webService) cartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		visitorUID := s.visitorUID(w, r)

		basket, err := s.service.Get(c, visitorUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = cartPageTemplate.Execute(w, cartPageInfo{
			Cart:    basket,
			Warning: r.URL.Query().Get("warning"),
		})
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}
	}
}

type cartPageInfo struct {
	Cart    Cart
	Warning string
}

type quantityForm struct {
	NewQuantity int `form:"newQuantity"`
}

func (s *webService) updateQuantityPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		visitorUID := s.visitorUID(w, r)
		productUID := mux.Vars(r)["productUID"]

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		form := quantityForm{}
		err = formcodec.NewDecoder().Decode(&form, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err)))
			return
		}

		err = s.service.UpdateQuantity(c, visitorUID, productUID, form.NewQuantity)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		redirectToCart(w, r)
	}
}

func (s *webService) removeItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		visitorUID := s.visitorUID(w, r)
		productUID := mux.Vars(r)["productUID"]

		err := s.service.Remove(c, visitorUID, productUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		redirectToCart(w, r)
	}
}

func (s *webService) clearCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		visitorUID := s.visitorUID(w, r)

		err := s.service.Clear(c, visitorUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		redirectToCart(w, r)
	}
}

func redirectToCart(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, fmt.Sprintf("%s/cart", myhttp.HostnameWithScheme(r)), http.StatusSeeOther)
}

// CartURLWithWarning composes the cart url carrying a user-facing warning.
func CartURLWithWarning(hostname string, warning string) string {
	return fmt.Sprintf("%s/cart?warning=%s", hostname, url.QueryEscape(warning))
}
