package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"natours/config"
	"natours/infras/metrics"
	"natours/infras/otel/mocks"
	bookingMocks "natours/internal/domains/booking/mocks"
	"natours/internal/domains/booking/model"
	"natours/internal/domains/booking/model/dto"
	"natours/internal/domains/booking/service"
	cacheMocks "natours/shared/cache/mocks"
	gDto "natours/shared/dto"
	"natours/shared/failure"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	tourID = "0b7e3c1a-2f4d-4e8b-9a6c-1d2e3f4a5b6c"
	userID = "9f8e7d6c-5b4a-4c3d-8e2f-1a0b9c8d7e6f"
)

func newService(t *testing.T) (*bookingMocks.MockBooking, service.Booking) {
	ctrl := gomock.NewController(t)

	repo := bookingMocks.NewMockBooking(ctrl)

	cache := cacheMocks.NewMockRedisCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).AnyTimes()
	cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return repo, service.New(repo, &config.Config{}, cache, mocks.NewOtel())
}

func TestBookingService_Book(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		mod      model.Booking
		insert   error
		wantCode int
		counted  float64
	}{
		{
			name:    "checkout",
			source:  metrics.SourceCheckout,
			mod:     dto.NewBooking(tourID, userID, 497, true, userID),
			counted: 1,
		},
		{
			name:     "non positive price",
			source:   metrics.SourceAdmin,
			mod:      dto.NewBooking(tourID, userID, 0, true, ""),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "insert fails",
			source:   metrics.SourceCheckout,
			mod:      dto.NewBooking(tourID, userID, 497, true, userID),
			insert:   errors.New("connection refused"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, svc := newService(t)

			if tt.wantCode != http.StatusBadRequest {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(tt.insert)
			}

			before := testutil.ToFloat64(metrics.BookingsCreatedTotal.WithLabelValues(tt.source))

			res, err := svc.Book(context.Background(), tt.mod, tt.source)

			after := testutil.ToFloat64(metrics.BookingsCreatedTotal.WithLabelValues(tt.source))
			assert.InDelta(t, tt.counted, after-before, 0.001)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.mod.ID, res.ID)
			assert.Equal(t, tourID, res.Tour.ID)
			assert.True(t, res.Paid)
		})
	}
}

func TestBookingService_CreateCountsAsAdmin(t *testing.T) {
	repo, svc := newService(t)

	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	before := testutil.ToFloat64(metrics.BookingsCreatedTotal.WithLabelValues(metrics.SourceAdmin))

	_, err := svc.Create(context.Background(), dto.NewBooking(tourID, userID, 1197, false, "admin-1"))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.BookingsCreatedTotal.WithLabelValues(metrics.SourceAdmin))-before, 0.001)
}

func TestBookingService_Mine(t *testing.T) {
	repo, svc := newService(t)

	params := gDto.QueryParams{}
	mine := gDto.Where(gDto.Filter{Field: model.FieldUserID, Value: userID, Operator: gDto.FilterOperatorEq})

	repo.EXPECT().GetAll(gomock.Any(), params, mine).Return([]model.Booking{
		{ID: "b-1", TourID: tourID, UserID: userID, Price: 497, Paid: true, TourName: "The Forest Hiker"},
	}, nil)
	repo.EXPECT().Count(gomock.Any(), mine).Return(1, nil)

	res, err := svc.Mine(context.Background(), userID, params)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "The Forest Hiker", res.Items[0].Tour.Name)
}
