package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"natours/config"
	"natours/infras/otel/mocks"
	reviewMocks "natours/internal/domains/review/mocks"
	"natours/internal/domains/review/model"
	"natours/internal/domains/review/service"
	tourMocks "natours/internal/domains/tour/mocks"
	cacheMocks "natours/shared/cache/mocks"
	"natours/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	tourID = "0b7e3c1a-2f4d-4e8b-9a6c-1d2e3f4a5b6c"
	userID = "9f8e7d6c-5b4a-4c3d-8e2f-1a0b9c8d7e6f"
)

type fixture struct {
	repo  *reviewMocks.MockReview
	tours *tourMocks.MockTour
	svc   service.Review
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:  reviewMocks.NewMockReview(ctrl),
		tours: tourMocks.NewMockTour(ctrl),
	}

	cache := cacheMocks.NewMockRedisCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).AnyTimes()
	cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.tours, &config.Config{}, cache, mocks.NewOtel())

	return f
}

func review() model.Review {
	return model.Review{ID: "r-1", Review: "Cras mollis nisi parturient mi nec aliquet suspendisse.", Rating: 4, TourID: tourID, UserID: userID}
}

func TestReviewService_CreateRecalculatesRatings(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	f.tours.EXPECT().RecalculateRatings(gomock.Any(), tourID).Return(nil)

	res, err := f.svc.Create(context.Background(), review())
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.Rating)
}

func TestReviewService_CreateDuplicate(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
		Return(failure.Conflict("Duplicate field value: (tour_id, user_id). Please use another value!"))

	_, err := f.svc.Create(context.Background(), review())
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestReviewService_CreateRejectsRatingOutOfRange(t *testing.T) {
	f := newFixture(t)

	mod := review()
	mod.Rating = 6

	_, err := f.svc.Create(context.Background(), mod)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestReviewService_DeleteRecalculatesRatings(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().FindByID(gomock.Any(), "r-1").Return(review(), nil)
	f.repo.EXPECT().DeleteByID(gomock.Any(), "r-1").Return(nil)
	f.tours.EXPECT().RecalculateRatings(gomock.Any(), tourID).Return(errors.New("timeout"))

	assert.NoError(t, f.svc.Delete(context.Background(), "r-1"))
}

func TestReviewService_DeleteTwice(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().FindByID(gomock.Any(), "r-1").Return(model.Review{}, failure.NotFound("No review found with that ID"))

	err := f.svc.Delete(context.Background(), "r-1")
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}
