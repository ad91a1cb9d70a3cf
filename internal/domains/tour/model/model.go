package model

import (
	"math"
	"time"

	"natours/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "tours"
	EntityName = "tour"

	FieldID              = "id"
	FieldName            = "name"
	FieldSlug            = "slug"
	FieldRatingsAverage  = "ratings_average"
	FieldRatingsQuantity = "ratings_quantity"
	FieldPrice           = "price"
	FieldSecretTour      = "secret_tour"
	FieldImageCover      = "image_cover"
	FieldImages          = "images"

	DefaultRatingsAverage = 4.5
	daysPerWeek           = 7
)

// Location is a GeoJSON point. Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `json:"type"                  validate:"omitempty,eq=Point"`
	Coordinates []float64 `json:"coordinates"           validate:"len=2"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
	Day         int       `json:"day,omitempty"`
}

func (l Location) Lng() float64 {
	return l.Coordinates[0]
}

func (l Location) Lat() float64 {
	return l.Coordinates[1]
}

type Tour struct {
	ID              string                    `db:"id"`
	Name            string                    `db:"name"             validate:"required,min=10,max=40"`
	Slug            string                    `db:"slug"`
	Duration        int                       `db:"duration"         validate:"required,gt=0"`
	MaxGroupSize    int                       `db:"max_group_size"   validate:"required,gt=0"`
	Difficulty      string                    `db:"difficulty"       validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64                   `db:"ratings_average"  validate:"gte=1,lte=5"`
	RatingsQuantity int                       `db:"ratings_quantity" validate:"gte=0"`
	Price           float64                   `db:"price"            validate:"required,gt=0"`
	PriceDiscount   *float64                  `db:"price_discount"   validate:"omitempty,gte=0,ltfield=Price"`
	Summary         string                    `db:"summary"          validate:"required"`
	Description     string                    `db:"description"`
	ImageCover      string                    `db:"image_cover"      validate:"required"`
	Images          pq.StringArray            `db:"images"`
	StartDates      model.JSON[[]time.Time]   `db:"start_dates"`
	SecretTour      bool                      `db:"secret_tour"`
	StartLocation   model.JSON[*Location]     `db:"start_location"`
	Locations       model.JSON[[]Location]    `db:"locations"`
	Guides          pq.StringArray            `db:"guides"           validate:"dive,uuid"`
	model.Metadata
}

// DurationWeeks is derived, never stored.
func (t Tour) DurationWeeks() float64 {
	return float64(t.Duration) / daysPerWeek
}

// RoundRating keeps one decimal, e.g. 4.6666 becomes 4.7.
func RoundRating(val float64) float64 {
	return math.Round(val*10) / 10
}

// Stat is one difficulty bucket of the tour statistics report.
type Stat struct {
	Difficulty string  `db:"difficulty"  json:"difficulty"`
	NumTours   int     `db:"num_tours"   json:"num_tours"`
	NumRatings int     `db:"num_ratings" json:"num_ratings"`
	AvgRating  float64 `db:"avg_rating"  json:"avg_rating"`
	AvgPrice   float64 `db:"avg_price"   json:"avg_price"`
	MinPrice   float64 `db:"min_price"   json:"min_price"`
	MaxPrice   float64 `db:"max_price"   json:"max_price"`
}

// MonthlyPlan counts tour starts in one month of a year.
type MonthlyPlan struct {
	Month         int            `db:"month"           json:"month"`
	NumTourStarts int            `db:"num_tour_starts" json:"num_tour_starts"`
	Tours         pq.StringArray `db:"tours"           json:"tours"`
}

type Distance struct {
	ID       string  `db:"id"       json:"id"`
	Name     string  `db:"name"     json:"name"`
	Distance float64 `db:"distance" json:"distance"`
}
