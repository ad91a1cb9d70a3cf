package dto

import (
	"context"

	"natours/internal/domains/booking/model"
	"natours/shared/constant"
	gDto "natours/shared/dto"
	gModel "natours/shared/model"
	"natours/shared/timezone"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	TourID string  `json:"tour_id" validate:"required,uuid"`
	UserID string  `json:"user_id" validate:"required,uuid"`
	Price  float64 `json:"price"   validate:"required,gt=0"`
	// Paid defaults to true.
	Paid *bool `json:"paid"`
}

func (r CreateBookingRequest) ToModel(ctx context.Context) (model.Booking, error) {
	by, _ := ctx.Value(constant.ContextKeyUserID).(string)

	paid := true
	if r.Paid != nil {
		paid = *r.Paid
	}

	return NewBooking(r.TourID, r.UserID, r.Price, paid, by), nil
}

func NewBooking(tourID, userID string, price float64, paid bool, by string) model.Booking {
	if by == "" {
		by = constant.ContextGuest
	}

	return model.Booking{
		ID:       uuid.NewString(),
		TourID:   tourID,
		UserID:   userID,
		Price:    price,
		Paid:     paid,
		Metadata: gModel.NewMetadata(timezone.Now(), by),
	}
}

type UpdateBookingRequest struct {
	Price *float64 `db:"price" json:"price" validate:"omitempty,gt=0"`
	Paid  *bool    `db:"paid"  json:"paid"`
}

type BookingTour struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type BookingUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Role  string `json:"role"`
}

type BookingResponse struct {
	ID    string      `json:"id"`
	Tour  BookingTour `json:"tour"`
	User  BookingUser `json:"user"`
	Price float64     `json:"price"`
	Paid  bool        `json:"paid"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.Tour = BookingTour{ID: model.TourID, Name: model.TourName, Slug: model.TourSlug}
	r.User = BookingUser{
		ID:    model.UserID,
		Name:  model.UserName,
		Email: model.UserEmail,
		Photo: model.UserPhoto,
		Role:  model.UserRole,
	}
	r.Price = model.Price
	r.Paid = model.Paid
	r.Metadata.FromModel(model.Metadata)
}

func Render(model model.Booking) BookingResponse {
	var res BookingResponse

	res.FromModel(model)

	return res
}
