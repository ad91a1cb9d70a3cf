package model

import (
	"natours/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID     = "id"
	FieldTourID = "tour_id"
	FieldUserID = "user_id"
)

// Booking reads resolve the buyer and the tour name.
type Booking struct {
	ID        string  `db:"id"`
	TourID    string  `db:"tour_id"    validate:"required,uuid"`
	UserID    string  `db:"user_id"    validate:"required,uuid"`
	Price     float64 `db:"price"      validate:"required,gt=0"`
	Paid      bool    `db:"paid"`
	// SessionID is the checkout session a webhook booking came from; unique, so redeliveries cannot double-book.
	SessionID *string `db:"checkout_session_id"`
	TourName  string  `db:"tour_name"  table:"tours" column:"name"`
	TourSlug  string  `db:"tour_slug"  table:"tours" column:"slug"`
	UserName  string  `db:"user_name"  table:"users" column:"name"`
	UserEmail string  `db:"user_email" table:"users" column:"email"`
	UserPhoto string  `db:"user_photo" table:"users" column:"photo"`
	UserRole  string  `db:"user_role"  table:"users" column:"role"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "LEFT JOIN tours ON tours.id = bookings.tour_id LEFT JOIN users ON users.id = bookings.user_id"
}
