package model

import (
	"natours/shared/model"
)

const (
	TableName  = "reviews"
	EntityName = "review"

	FieldID     = "id"
	FieldTourID = "tour_id"
	FieldUserID = "user_id"
	FieldRating = "rating"
)

// Review is unique per (tour_id, user_id). Author name and photo come from users.
type Review struct {
	ID        string  `db:"id"`
	Review    string  `db:"review"     validate:"required,max=2000"`
	Rating    float64 `db:"rating"     validate:"required,gte=1,lte=5"`
	TourID    string  `db:"tour_id"    validate:"required,uuid"`
	UserID    string  `db:"user_id"    validate:"required,uuid"`
	UserName  string  `db:"user_name"  table:"users" column:"name"`
	UserPhoto string  `db:"user_photo" table:"users" column:"photo"`
	model.Metadata
}

func (Review) GetJoinQuery() string {
	return "LEFT JOIN users ON users.id = reviews.user_id"
}
