package dto

import (
	"context"
	"math"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"natours/internal/domains/tour/model"
	userDto "natours/internal/domains/user/model/dto"
	"natours/shared/constant"
	"natours/shared/failure"
	gModel "natours/shared/model"
	"natours/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	UnitMiles      = "mi"
	UnitKilometers = "km"

	earthRadiusMiles = 3963.2
	earthRadiusKM    = 6378.1
)

type CreateTourRequest struct {
	Name          string           `json:"name"           validate:"required,min=10,max=40"`
	Duration      int              `json:"duration"       validate:"required,gt=0"`
	MaxGroupSize  int              `json:"max_group_size" validate:"required,gt=0"`
	Difficulty    string           `json:"difficulty"     validate:"required,oneof=easy medium difficult"`
	Price         float64          `json:"price"          validate:"required,gt=0"`
	PriceDiscount *float64         `json:"price_discount" validate:"omitempty,gte=0,ltfield=Price"`
	Summary       string           `json:"summary"        validate:"required"`
	Description   string           `json:"description"`
	ImageCover    string           `json:"image_cover"    validate:"required"`
	Images        []string         `json:"images"`
	StartDates    []time.Time      `json:"start_dates"`
	SecretTour    bool             `json:"secret_tour"`
	StartLocation *model.Location  `json:"start_location"`
	Locations     []model.Location `json:"locations"`
	Guides        []string         `json:"guides"         validate:"dive,uuid"`
}

func (r CreateTourRequest) ToModel(ctx context.Context) (model.Tour, error) {
	by, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return model.Tour{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(r.Name),
		Duration:        r.Duration,
		MaxGroupSize:    r.MaxGroupSize,
		Difficulty:      r.Difficulty,
		RatingsAverage:  model.DefaultRatingsAverage,
		Price:           r.Price,
		PriceDiscount:   r.PriceDiscount,
		Summary:         strings.TrimSpace(r.Summary),
		Description:     strings.TrimSpace(r.Description),
		ImageCover:      r.ImageCover,
		Images:          pq.StringArray(nonNil(r.Images)),
		StartDates:      gModel.NewJSON(dates(r.StartDates)),
		SecretTour:      r.SecretTour,
		StartLocation:   gModel.NewJSON(point(r.StartLocation)),
		Locations:       gModel.NewJSON(points(r.Locations)),
		Guides:          pq.StringArray(nonNil(r.Guides)),
		Metadata:        gModel.NewMetadata(timezone.Now(), by),
	}, nil
}

// UpdateTourRequest is a partial update. Ratings are never written by clients.
type UpdateTourRequest struct {
	Name          *string                        `db:"name"           json:"name"           validate:"omitempty,min=10,max=40"`
	Duration      *int                           `db:"duration"       json:"duration"       validate:"omitempty,gt=0"`
	MaxGroupSize  *int                           `db:"max_group_size" json:"max_group_size" validate:"omitempty,gt=0"`
	Difficulty    *string                        `db:"difficulty"     json:"difficulty"     validate:"omitempty,oneof=easy medium difficult"`
	Price         *float64                       `db:"price"          json:"price"          validate:"omitempty,gt=0"`
	PriceDiscount *float64                       `db:"price_discount" json:"price_discount" validate:"omitempty,gte=0"`
	Summary       *string                        `db:"summary"        json:"summary"`
	Description   *string                        `db:"description"    json:"description"`
	ImageCover    *string                        `db:"image_cover"    json:"image_cover"`
	Images        *pq.StringArray                `db:"images"         json:"images"`
	StartDates    *gModel.JSON[[]time.Time]      `db:"start_dates"    json:"start_dates"`
	SecretTour    *bool                          `db:"secret_tour"    json:"secret_tour"`
	StartLocation *gModel.JSON[*model.Location]  `db:"start_location" json:"start_location"`
	Locations     *gModel.JSON[[]model.Location] `db:"locations"      json:"locations"`
	Guides        *pq.StringArray                `db:"guides"         json:"guides"         validate:"omitempty,dive,uuid"`
}

// TourResponse keys match column names so ?fields= can project the rendered JSON.
type TourResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Duration        int              `json:"duration"`
	DurationWeeks   float64          `json:"duration_weeks"`
	MaxGroupSize    int              `json:"max_group_size"`
	Difficulty      string           `json:"difficulty"`
	RatingsAverage  float64          `json:"ratings_average"`
	RatingsQuantity int              `json:"ratings_quantity"`
	Price           float64          `json:"price"`
	PriceDiscount   *float64         `json:"price_discount,omitempty"`
	Summary         string           `json:"summary"`
	Description     string           `json:"description"`
	ImageCover      string           `json:"image_cover"`
	Images          []string         `json:"images"`
	StartDates      []time.Time      `json:"start_dates"`
	SecretTour      bool             `json:"secret_tour"`
	StartLocation   *model.Location  `json:"start_location"`
	Locations       []model.Location `json:"locations"`
	// Guides holds ids in lists and the guide users on read-one.
	Guides  any              `json:"guides"`
	Reviews []ReviewResponse `json:"reviews,omitempty"`
}

// ReviewResponse is the shape a review takes when embedded in its tour.
type ReviewResponse struct {
	ID        string  `json:"id"`
	Review    string  `json:"review"`
	Rating    float64 `json:"rating"`
	UserID    string  `json:"user_id"`
	UserName  string  `json:"user_name"`
	UserPhoto string  `json:"user_photo"`
	CreatedAt string  `json:"created_at"`
}

func (r *TourResponse) FromModel(model model.Tour) {
	r.ID = model.ID
	r.Name = model.Name
	r.Slug = model.Slug
	r.Duration = model.Duration
	r.DurationWeeks = model.DurationWeeks()
	r.MaxGroupSize = model.MaxGroupSize
	r.Difficulty = model.Difficulty
	r.RatingsAverage = model.RatingsAverage
	r.RatingsQuantity = model.RatingsQuantity
	r.Price = model.Price
	r.PriceDiscount = model.PriceDiscount
	r.Summary = model.Summary
	r.Description = model.Description
	r.ImageCover = model.ImageCover
	r.Images = nonNil(model.Images)
	r.StartDates = model.StartDates.Val
	r.SecretTour = model.SecretTour
	r.StartLocation = model.StartLocation.Val
	r.Locations = model.Locations.Val
	r.Guides = nonNil(model.Guides)
}

func Render(model model.Tour) TourResponse {
	var res TourResponse

	res.FromModel(model)

	return res
}

// WithGuides replaces the guide ids with the guide users.
func (r *TourResponse) WithGuides(guides []userDto.GuideResponse) {
	r.Guides = guides
}

// GeoQuery is a point plus the unit distances are expressed in.
type GeoQuery struct {
	Lat  float64
	Lng  float64
	Unit string
}

// ParseGeoQuery reads "lat,lng" and a unit of mi or km.
func ParseGeoQuery(latlng, unit string) (GeoQuery, error) {
	if unit != UnitMiles && unit != UnitKilometers {
		return GeoQuery{}, failure.BadRequestFromString("unit must be mi or km") //nolint:wrapcheck
	}

	parts := strings.Split(latlng, ",")
	if len(parts) != 2 { //nolint:mnd
		return GeoQuery{}, errLatLng()
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return GeoQuery{}, errLatLng()
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || math.IsNaN(lng) || lng < -180 || lng > 180 {
		return GeoQuery{}, errLatLng()
	}

	return GeoQuery{Lat: lat, Lng: lng, Unit: unit}, nil
}

// EarthRadius is expressed in the query's unit.
func (q GeoQuery) EarthRadius() float64 {
	if q.Unit == UnitMiles {
		return earthRadiusMiles
	}

	return earthRadiusKM
}

func errLatLng() error {
	return failure.BadRequestFromString("Please provide latitude and longitude in the format lat,lng") //nolint:wrapcheck
}

func point(loc *model.Location) *model.Location {
	if loc == nil {
		return nil
	}

	res := *loc
	res.Type = "Point"

	return &res
}

func points(locs []model.Location) []model.Location {
	res := make([]model.Location, len(locs))

	for idx := range locs {
		res[idx] = *point(&locs[idx])
	}

	return res
}

func dates(val []time.Time) []time.Time {
	if val == nil {
		return []time.Time{}
	}

	return val
}

func nonNil(val []string) []string {
	if val == nil {
		return []string{}
	}

	return val
}

// TourImagesRequest carries the multipart files of a tour update.
type TourImagesRequest struct {
	ImageCover *multipart.FileHeader   `json:"image_cover" validate:"omitempty,mimetypes=image/jpeg image/png image/webp,maxfilesize=5"`
	Images     []*multipart.FileHeader `json:"images"      validate:"max=3,dive,mimetypes=image/jpeg image/png image/webp,maxfilesize=5"`
}

func (r TourImagesRequest) Empty() bool {
	return r.ImageCover == nil && len(r.Images) == 0
}
