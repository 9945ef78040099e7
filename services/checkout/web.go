package checkout

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/tnscouts/shopfront/lib/mycontext"
	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/myhttp"
	"github.com/tnscouts/shopfront/lib/mylog"
	"github.com/tnscouts/shopfront/lib/mypublisher"
	"github.com/tnscouts/shopfront/lib/mypubsub"
	"github.com/tnscouts/shopfront/lib/mystore"
	"github.com/tnscouts/shopfront/lib/mytime"
	"github.com/tnscouts/shopfront/lib/myuuid"
	"github.com/tnscouts/shopfront/services/cart"
	"github.com/tnscouts/shopfront/services/cart/cartevents"
	"github.com/tnscouts/shopfront/services/catalog"
	"github.com/tnscouts/shopfront/services/checkout/scoutapi"
	"github.com/tnscouts/shopfront/services/session"
)

type webService struct {
	service        *Service
	catalogService *catalog.Service
	uuider         myuuid.UUIDer
	logger         mylog.Logger
}

func NewWebService(pendingStore mystore.Store[PendingPurchase], sessionService *session.Service,
	cartService *cart.Service, catalogService *catalog.Service, remote scoutapi.Client,
	nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher, subscriber mypubsub.PubSub) *webService {
	return &webService{
		service:        NewService(pendingStore, sessionService, cartService, catalogService, remote, nower, pub, subscriber),
		catalogService: catalogService,
		uuider:         uuider,
		logger:         mylog.New("checkoutweb"),
	}
}

// Service exposes the underlying checkout operations to other components.
func (s *webService) Service() *Service {
	return s.service
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	s.registerRoutes(router)

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	// Listen for cart mutations so stale pending purchases get retired.
	return s.service.Subscribe(c)
}

func (s *webService) registerRoutes(router *mux.Router) {
	router.HandleFunc("/login", s.loginPage()).Methods("GET")
	router.HandleFunc("/login", s.loginSubmitPage()).Methods("POST")
	router.HandleFunc("/signup", s.signupSubmitPage()).Methods("POST")
	router.HandleFunc("/logout", s.logoutPage()).Methods("POST")
	router.HandleFunc("/cart/add", s.addToCartPage()).Methods("POST")
	router.HandleFunc("/checkout/pending/cancel", s.cancelPendingPage()).Methods("POST")
	router.HandleFunc("/checkout/event", s.handleEventEnvelope()).Methods("POST")
}

//go:embed templates
var templateFolder embed.FS
var (
	loginPageTemplate        *template.Template
	loginSuccessPageTemplate *template.Template
)

func init() {
	loginPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/login.html"))
	loginSuccessPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/login_success.html"))
}

func (s *webService) visitorUID(w http.ResponseWriter, r *http.Request) string {
	uid, found := myhttp.VisitorUID(r)
	if !found {
		uid = s.uuider.Create()
		myhttp.SetVisitorUID(w, uid)
	}
	return uid
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type signupForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Username string `form:"username"`
	Role     string `form:"loginAs"`
}

type addToCartForm struct {
	ProductUID string `form:"productUID"`
}

type loginPageInfo struct {
	Error              string
	Notice             string
	Email              string
	Username           string
	Role               string
	PendingProductName string
}

type loginSuccessPageInfo struct {
	Username string
	Replayed bool
	Target   string
}

func (s *webService) loginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		visitorUID := s.visitorUID(w, r)

		s.renderLoginPage(c, w, visitorUID, http.StatusOK, loginPageInfo{})
	}
}

func (s *webService) loginSubmitPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		visitorUID := s.visitorUID(w, r)

		form := loginForm{}
		err := decodeForm(r, &form)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		result, err := s.service.Login(c, visitorUID, Credentials{
			Email:    form.Email,
			Password: form.Password,
		})
		if err != nil {
			replayErr := &ReplayError{}
			if errors.As(err, &replayErr) {
				// Authenticated, but the parked product did not make it to
				// the backend. The intent is still stored; retry from the cart.
				warning := "We could not finish adding your product. Please try again."
				http.Redirect(w, r, cart.CartURLWithWarning(myhttp.HostnameWithScheme(r), warning), http.StatusSeeOther)
				return
			}

			s.renderLoginPage(c, w, visitorUID, myerrors.GetHttpStatus(err), loginPageInfo{
				Error: userFacingMessage(err),
				Email: form.Email,
			})
			return
		}

		target := "/"
		if result.Replayed {
			target = "/cart"
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = loginSuccessPageTemplate.Execute(w, loginSuccessPageInfo{
			Username: result.Username,
			Replayed: result.Replayed,
			Target:   target,
		})
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) signupSubmitPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		visitorUID := s.visitorUID(w, r)

		form := signupForm{}
		err := decodeForm(r, &form)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if form.Role == "" {
			form.Role = "user"
		}

		err = s.service.Signup(c, visitorUID, Registration{
			Email:    form.Email,
			Password: form.Password,
			Username: form.Username,
			Role:     form.Role,
		})
		if err != nil {
			s.renderLoginPage(c, w, visitorUID, myerrors.GetHttpStatus(err), loginPageInfo{
				Error:    userFacingMessage(err),
				Email:    form.Email,
				Username: form.Username,
				Role:     form.Role,
			})
			return
		}

		s.renderLoginPage(c, w, visitorUID, http.StatusOK, loginPageInfo{
			Notice: "Account created. You can sign in now.",
			Email:  form.Email,
		})
	}
}

func (s *webService) logoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		visitorUID := s.visitorUID(w, r)

		err := s.service.Logout(c, visitorUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("%s/", myhttp.HostnameWithScheme(r)), http.StatusSeeOther)
	}
}

func (s *webService) addToCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		visitorUID := s.visitorUID(w, r)

		form := addToCartForm{}
		err := decodeForm(r, &form)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		added, err := s.service.AddProductToCart(c, visitorUID, form.ProductUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		destination := "/login"
		if added {
			destination = "/cart"
		}
		http.Redirect(w, r, fmt.Sprintf("%s%s", myhttp.HostnameWithScheme(r), destination), http.StatusSeeOther)
	}
}

func (s *webService) handleEventEnvelope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := cartevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}

func (s *webService) cancelPendingPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		visitorUID := s.visitorUID(w, r)

		err := s.service.CancelPending(c, visitorUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("%s/", myhttp.HostnameWithScheme(r)), http.StatusSeeOther)
	}
}

func (s *webService) renderLoginPage(c context.Context, w http.ResponseWriter, visitorUID string, statusCode int, info loginPageInfo) {
	errorWriter := myhttp.NewWriter(s.logger)

	if info.PendingProductName == "" {
		pending, exists, err := s.service.Pending(c, visitorUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if exists {
			product, found, err := s.catalogService.Get(c, pending.ProductUID)
			if err != nil {
				errorWriter.WriteError(c, w, 1, err)
				return
			}
			if found {
				info.PendingProductName = product.Name.EN
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	err := loginPageTemplate.Execute(w, info)
	if err != nil {
		s.logger.Log(c, visitorUID, mylog.SeverityError, "Error rendering login page: %s", err)
	}
}

func decodeForm(r *http.Request, target interface{}) error {
	err := r.ParseForm()
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	err = formcodec.NewDecoder().Decode(target, r.Form)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}

	return nil
}

// userFacingMessage strips the http status wrapping so the page shows the
// plain message, verbatim where it came from the backend.
func userFacingMessage(err error) string {
	cause := errors.Unwrap(err)
	if cause != nil {
		return cause.Error()
	}
	return err.Error()
}
