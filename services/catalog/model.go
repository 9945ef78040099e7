package catalog

import "fmt"

// LocalizedText carries the english and tamil rendering of a display string.
type LocalizedText struct {
	EN string
	TA string
}

func (t LocalizedText) In(lang string) string {
	if lang == "ta" {
		return t.TA
	}
	return t.EN
}

type Product struct {
	UID     string
	Name    LocalizedText
	Price   int // in cents
	Rating  float64
	Reviews int
	InStock bool
}

func (p Product) GetPriceFormatted() string {
	return fmt.Sprintf("₹ %.2f", float64(p.Price)/100.0)
}

type SortOrder string

const (
	SortByPopularity      SortOrder = "popularity"
	SortByPriceLowToHigh  SortOrder = "priceLowToHigh"
	SortByPriceHighToLow  SortOrder = "priceHighToLow"
	SortByRating          SortOrder = "rating"
)
