package dto

import (
	"context"
	"strings"

	"natours/internal/domains/review/model"
	"natours/shared/constant"
	gDto "natours/shared/dto"
	gModel "natours/shared/model"
	"natours/shared/timezone"

	"github.com/google/uuid"
)

// CreateReviewRequest: tour and user may be omitted when the route and session supply them.
type CreateReviewRequest struct {
	Review string  `json:"review"  validate:"required,max=2000"`
	Rating float64 `json:"rating"  validate:"required,gte=1,lte=5"`
	TourID string  `json:"tour_id" validate:"omitempty,uuid"`
	UserID string  `json:"user_id" validate:"omitempty,uuid"`
}

func (r CreateReviewRequest) ToModel(ctx context.Context) (model.Review, error) {
	by, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return model.Review{
		ID:       uuid.NewString(),
		Review:   strings.TrimSpace(r.Review),
		Rating:   r.Rating,
		TourID:   r.TourID,
		UserID:   r.UserID,
		Metadata: gModel.NewMetadata(timezone.Now(), by),
	}, nil
}

type UpdateReviewRequest struct {
	Review *string  `db:"review" json:"review" validate:"omitempty,max=2000"`
	Rating *float64 `db:"rating" json:"rating" validate:"omitempty,gte=1,lte=5"`
}

type ReviewResponse struct {
	ID        string  `json:"id"`
	Review    string  `json:"review"`
	Rating    float64 `json:"rating"`
	TourID    string  `json:"tour_id"`
	UserID    string  `json:"user_id"`
	UserName  string  `json:"user_name"`
	UserPhoto string  `json:"user_photo"`
	gDto.Metadata
}

func (r *ReviewResponse) FromModel(model model.Review) {
	r.ID = model.ID
	r.Review = model.Review
	r.Rating = model.Rating
	r.TourID = model.TourID
	r.UserID = model.UserID
	r.UserName = model.UserName
	r.UserPhoto = model.UserPhoto
	r.Metadata.FromModel(model.Metadata)
}

func Render(model model.Review) ReviewResponse {
	var res ReviewResponse

	res.FromModel(model)

	return res
}
