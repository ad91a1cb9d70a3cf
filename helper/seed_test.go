package helper_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"natours/helper"
	bookingMocks "natours/internal/domains/booking/mocks"
	reviewMocks "natours/internal/domains/review/mocks"
	reviewModel "natours/internal/domains/review/model"
	tourMocks "natours/internal/domains/tour/mocks"
	tourModel "natours/internal/domains/tour/model"
	userMocks "natours/internal/domains/user/mocks"
	userModel "natours/internal/domains/user/model"
	"natours/shared/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	usersJSON = `[{"id":"5c8a1d5b-0190-4b7a-9f1e-2c0d3f1a0004","name":"Sophie Louise Hart","email":"Sophie@Example.com",
		"password":"test1234","password_confirm":"test1234"}]`
	toursJSON = `[{"id":"7e2f6a10-3b1c-4d2e-8f90-1a2b3c4d0001","name":"The Forest Hiker","duration":5,"max_group_size":25,
		"difficulty":"easy","price":397,"summary":"Breathtaking hike","image_cover":"tour-1-cover.jpg",
		"guides":["5c8a1d5b-0190-4b7a-9f1e-2c0d3f1a0004"]}]`
	reviewsJSON = `[{"id":"9a4b2c3d-5e6f-4a7b-8c9d-0e1f2a3b0001","review":"Lovely","rating":5,
		"tour_id":"7e2f6a10-3b1c-4d2e-8f90-1a2b3c4d0001","user_id":"5c8a1d5b-0190-4b7a-9f1e-2c0d3f1a0004"}]`
)

type seedMocks struct {
	users    *userMocks.MockUser
	tours    *tourMocks.MockTour
	reviews  *reviewMocks.MockReview
	bookings *bookingMocks.MockBooking
}

func newSeeder(t *testing.T) (seedMocks, helper.Seeder) {
	ctrl := gomock.NewController(t)

	m := seedMocks{
		users:    userMocks.NewMockUser(ctrl),
		tours:    tourMocks.NewMockTour(ctrl),
		reviews:  reviewMocks.NewMockReview(ctrl),
		bookings: bookingMocks.NewMockBooking(ctrl),
	}

	return m, helper.NewSeeder(m.users, m.tours, m.reviews, m.bookings)
}

func devData(users, tours, reviews string) fstest.MapFS {
	return fstest.MapFS{
		helper.SeedFileUsers:   {Data: []byte(users)},
		helper.SeedFileTours:   {Data: []byte(tours)},
		helper.SeedFileReviews: {Data: []byte(reviews)},
	}
}

func TestSeeder_Import(t *testing.T) {
	m, seeder := newSeeder(t)

	gomock.InOrder(
		m.users.EXPECT().InsertBulk(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, users []userModel.User) error {
			require.Len(t, users, 1)
			assert.Equal(t, "5c8a1d5b-0190-4b7a-9f1e-2c0d3f1a0004", users[0].ID)
			assert.Equal(t, "sophie@example.com", users[0].Email)
			assert.Equal(t, "user", users[0].Role)
			assert.True(t, users[0].Active)
			assert.NoError(t, password.Verify("test1234", users[0].Password))

			return nil
		}),
		m.tours.EXPECT().InsertBulk(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tours []tourModel.Tour) error {
			require.Len(t, tours, 1)
			assert.Equal(t, "7e2f6a10-3b1c-4d2e-8f90-1a2b3c4d0001", tours[0].ID)
			assert.Equal(t, "the-forest-hiker", tours[0].Slug)
			assert.Equal(t, []string{"5c8a1d5b-0190-4b7a-9f1e-2c0d3f1a0004"}, []string(tours[0].Guides))
			assert.NotNil(t, tours[0].Images)

			return nil
		}),
		m.reviews.EXPECT().InsertBulk(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, reviews []reviewModel.Review) error {
			require.Len(t, reviews, 1)
			assert.Equal(t, "9a4b2c3d-5e6f-4a7b-8c9d-0e1f2a3b0001", reviews[0].ID)

			return nil
		}),
		m.tours.EXPECT().RecalculateRatings(gomock.Any(), "7e2f6a10-3b1c-4d2e-8f90-1a2b3c4d0001").Return(nil),
	)

	require.NoError(t, seeder.Import(context.Background(), devData(usersJSON, toursJSON, reviewsJSON)))
}

func TestSeeder_ImportRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		data fstest.MapFS
	}{
		{
			name: "missing file",
			data: fstest.MapFS{helper.SeedFileUsers: {Data: []byte(usersJSON)}},
		},
		{
			name: "malformed json",
			data: devData(usersJSON, `[{"id":`, reviewsJSON),
		},
		{
			name: "record without id",
			data: devData(usersJSON, toursJSON, `[{"review":"Lovely","rating":5}]`),
		},
		{
			name: "rating out of range",
			data: devData(usersJSON, toursJSON, `[{"id":"9a4b2c3d-5e6f-4a7b-8c9d-0e1f2a3b0001","review":"Lovely","rating":9}]`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, seeder := newSeeder(t)

			assert.Error(t, seeder.Import(context.Background(), tt.data))
		})
	}
}

func TestSeeder_ImportStopsOnInsertError(t *testing.T) {
	m, seeder := newSeeder(t)

	m.users.EXPECT().InsertBulk(gomock.Any(), gomock.Any()).Return(nil)
	m.tours.EXPECT().InsertBulk(gomock.Any(), gomock.Any()).Return(errors.New("duplicate key"))

	err := seeder.Import(context.Background(), devData(usersJSON, toursJSON, reviewsJSON))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to import tours")
}

func TestSeeder_Delete(t *testing.T) {
	t.Run("children first", func(t *testing.T) {
		m, seeder := newSeeder(t)

		gomock.InOrder(
			m.bookings.EXPECT().Purge(gomock.Any()).Return(nil),
			m.reviews.EXPECT().Purge(gomock.Any()).Return(nil),
			m.tours.EXPECT().Purge(gomock.Any()).Return(nil),
			m.users.EXPECT().Purge(gomock.Any()).Return(nil),
		)

		require.NoError(t, seeder.Delete(context.Background()))
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		m, seeder := newSeeder(t)

		m.bookings.EXPECT().Purge(gomock.Any()).Return(nil)
		m.reviews.EXPECT().Purge(gomock.Any()).Return(errors.New("lock timeout"))

		err := seeder.Delete(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete reviews")
	})
}
