package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tnscouts/shopfront/lib/myerrors"
	"github.com/tnscouts/shopfront/lib/mylog"
)

// Query narrows and orders the assortment the way the products page does:
// substring match on the localized name, one of four sort orders, paging via
// a growing window.
type Query struct {
	Search string    `form:"search"`
	SortBy SortOrder `form:"sortBy"`
	Lang   string    `form:"lang"`
	Limit  int       `form:"limit"`
}

type Service struct {
	products []Product
	logger   mylog.Logger
}

func NewService() *Service {
	return &Service{
		products: defaultProducts(),
		logger:   mylog.New("catalog"),
	}
}

// Get returns the product with this uid.
func (s *Service) Get(c context.Context, uid string) (Product, bool, error) {
	for _, p := range s.products {
		if p.UID == uid {
			return p, true, nil
		}
	}
	return Product{}, false, nil
}

// MustGet is Get with absence turned into a not-found error.
func (s *Service) MustGet(c context.Context, uid string) (Product, error) {
	p, found, err := s.Get(c, uid)
	if err != nil {
		return Product{}, err
	}
	if !found {
		return Product{}, myerrors.NewNotFoundError(fmt.Errorf("product with uid %s not found", uid))
	}
	return p, nil
}

// Search applies the query to the full assortment.
func (s *Service) Search(c context.Context, query Query) ([]Product, error) {
	result := make([]Product, 0, len(s.products))

	term := strings.ToLower(strings.TrimSpace(query.Search))
	for _, p := range s.products {
		if term == "" || strings.Contains(strings.ToLower(p.Name.In(query.Lang)), term) {
			result = append(result, p)
		}
	}

	switch query.SortBy {
	case SortByPriceLowToHigh:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	case SortByPriceHighToLow:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price > result[j].Price })
	case SortByRating:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Rating > result[j].Rating })
	case SortByPopularity, "":
		sort.SliceStable(result, func(i, j int) bool { return result[i].Reviews > result[j].Reviews })
	default:
		return nil, myerrors.NewInvalidInputError(fmt.Errorf("unknown sort order %s", query.SortBy))
	}

	if query.Limit > 0 && query.Limit < len(result) {
		result = result[:query.Limit]
	}

	s.logger.Log(c, "", mylog.SeverityDebug, "Catalog search %q returned %d products", query.Search, len(result))

	return result, nil
}
