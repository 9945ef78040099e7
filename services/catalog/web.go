package catalog

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/tnscouts/shopfront/lib/mycontext"
	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/myhttp"
	"github.com/tnscouts/shopfront/lib/mylog"
)

type webService struct {
	service *Service
	logger  mylog.Logger
}

func NewWebService(service *Service) *webService {
	return &webService{
		service: service,
		logger:  mylog.New("catalogweb"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/", s.productListPage()).Methods("GET")
	router.HandleFunc("/products", s.productListPage()).Methods("GET")
	router.HandleFunc("/api/products", s.productListAPI()).Methods("GET")
}

//go:embed templates
var templateFolder embed.FS
var (
	productListPageTemplate *template.Template
)

func init() {
	productListPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/products.html"))
}

func parseQuery(r *http.Request) (Query, error) {
	query := Query{}
	err := formcodec.NewDecoder().Decode(&query, r.URL.Query())
	if err != nil {
		return Query{}, myerrors.NewInvalidInputError(fmt.Errorf("error decoding query: %s", err))
	}
	return query, nil
}

func (s *webService) productListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		query, err := parseQuery(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		products, err := s.service.Search(c, query)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = productListPageTemplate.Execute(w, productListPageInfo{
			Products: products,
			Lang:     query.Lang,
			Search:   query.Search,
		})
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}
	}
}

type productListPageInfo struct {
	Products []Product
	Lang     string
	Search   string
}

func (s *webService) productListAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		query, err := parseQuery(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		products, err := s.service.Search(c, query)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, products)
	}
}
