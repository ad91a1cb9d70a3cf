package dto_test

import (
	"context"
	"net/http"
	"testing"

	"natours/internal/domains/tour/model"
	"natours/internal/domains/tour/model/dto"
	"natours/shared/constant"
	"natours/shared/failure"
	"natours/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTourRequest_ToModel(t *testing.T) {
	req := dto.CreateTourRequest{
		Name:          "The Forest Hiker",
		Duration:      14,
		MaxGroupSize:  25,
		Difficulty:    "easy",
		Price:         397,
		Summary:       "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:    "tour-1-cover.jpg",
		StartLocation: &model.Location{Coordinates: []float64{-115.570154, 51.178456}, Address: "224 Banff Ave, Banff, AB, Canada"},
	}

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")

	tour, err := req.ToModel(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, tour.ID)
	assert.Equal(t, model.DefaultRatingsAverage, tour.RatingsAverage)
	assert.Equal(t, "Point", tour.StartLocation.Val.Type)
	assert.Equal(t, -115.570154, tour.StartLocation.Val.Lng())
	assert.Equal(t, 51.178456, tour.StartLocation.Val.Lat())
	assert.Equal(t, "admin-1", tour.CreatedBy)
	assert.NoError(t, validator.ValidateStruct(&tour))
}

func TestCreateTourRequest_Validation(t *testing.T) {
	discount := 500.0

	tests := []struct {
		name    string
		req     dto.CreateTourRequest
		wantMsg string
	}{
		{
			name: "name too short",
			req: dto.CreateTourRequest{
				Name: "Short", Duration: 5, MaxGroupSize: 10, Difficulty: "easy", Price: 100, Summary: "s", ImageCover: "c.jpg",
			},
			wantMsg: "name",
		},
		{
			name: "unknown difficulty",
			req: dto.CreateTourRequest{
				Name: "The Sea Explorer", Duration: 5, MaxGroupSize: 10, Difficulty: "extreme", Price: 100, Summary: "s", ImageCover: "c.jpg",
			},
			wantMsg: "difficulty",
		},
		{
			name: "discount above price",
			req: dto.CreateTourRequest{
				Name: "The Sea Explorer", Duration: 5, MaxGroupSize: 10, Difficulty: "easy", Price: 100, PriceDiscount: &discount, Summary: "s", ImageCover: "c.jpg",
			},
			wantMsg: "should be below price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRender(t *testing.T) {
	tour := model.Tour{ID: "t-1", Name: "The Snow Adventurer", Duration: 14, Guides: nil}

	res := dto.Render(tour)

	assert.Equal(t, 2.0, res.DurationWeeks)
	assert.Equal(t, []string{}, res.Guides)
	assert.Equal(t, []string{}, res.Images)
}

func TestParseGeoQuery(t *testing.T) {
	tests := []struct {
		name    string
		latlng  string
		unit    string
		want    dto.GeoQuery
		wantErr bool
	}{
		{name: "miles", latlng: "34.111745,-118.113491", unit: "mi", want: dto.GeoQuery{Lat: 34.111745, Lng: -118.113491, Unit: "mi"}},
		{name: "kilometres with spaces", latlng: "51.5, -0.12", unit: "km", want: dto.GeoQuery{Lat: 51.5, Lng: -0.12, Unit: "km"}},
		{name: "missing lng", latlng: "34.1", unit: "mi", wantErr: true},
		{name: "not a number", latlng: "abc,1", unit: "mi", wantErr: true},
		{name: "latitude out of range", latlng: "95,1", unit: "km", wantErr: true},
		{name: "nan latitude", latlng: "NaN,1", unit: "mi", wantErr: true},
		{name: "nan longitude", latlng: "1,nan", unit: "km", wantErr: true},
		{name: "unknown unit", latlng: "34.1,-118.1", unit: "ft", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dto.ParseGeoQuery(tt.latlng, tt.unit)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeoQuery_EarthRadius(t *testing.T) {
	assert.InDelta(t, 3963.2, dto.GeoQuery{Unit: dto.UnitMiles}.EarthRadius(), 0.001)
	assert.InDelta(t, 6378.1, dto.GeoQuery{Unit: dto.UnitKilometers}.EarthRadius(), 0.001)
}
