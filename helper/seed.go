package helper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	bookingRepository "natours/internal/domains/booking/repository"
	reviewModel "natours/internal/domains/review/model"
	reviewDto "natours/internal/domains/review/model/dto"
	reviewRepository "natours/internal/domains/review/repository"
	tourModel "natours/internal/domains/tour/model"
	tourDto "natours/internal/domains/tour/model/dto"
	tourRepository "natours/internal/domains/tour/repository"
	userModel "natours/internal/domains/user/model"
	userDto "natours/internal/domains/user/model/dto"
	userRepository "natours/internal/domains/user/repository"
	"natours/shared/validator"

	"github.com/goccy/go-json"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
)

const (
	SeedFileUsers   = "users.json"
	SeedFileTours   = "tours.json"
	SeedFileReviews = "reviews.json"
)

var ErrInvalidSeedRecord = errors.New("invalid seed record")

// Seed records carry fixed ids so tours can name their guides and reviews their tour and author.
type userRecord struct {
	ID string `json:"id" validate:"required,uuid"`
	userDto.CreateUserRequest
}

type tourRecord struct {
	ID string `json:"id" validate:"required,uuid"`
	tourDto.CreateTourRequest
}

type reviewRecord struct {
	ID string `json:"id" validate:"required,uuid"`
	reviewDto.CreateReviewRequest
}

type Seeder struct {
	users    userRepository.User
	tours    tourRepository.Tour
	reviews  reviewRepository.Review
	bookings bookingRepository.Booking
}

func NewSeeder(users userRepository.User, tours tourRepository.Tour, reviews reviewRepository.Review, bookings bookingRepository.Booking) Seeder {
	return Seeder{
		users:    users,
		tours:    tours,
		reviews:  reviews,
		bookings: bookings,
	}
}

// Import loads users, then tours, then reviews from data, and recomputes the rating of every reviewed tour.
func (s Seeder) Import(ctx context.Context, data fs.FS) error {
	users, err := readRecords[userRecord](data, SeedFileUsers)
	if err != nil {
		return err
	}

	tours, err := readRecords[tourRecord](data, SeedFileTours)
	if err != nil {
		return err
	}

	reviews, err := readRecords[reviewRecord](data, SeedFileReviews)
	if err != nil {
		return err
	}

	userModels := make([]userModel.User, 0, len(users))
	for _, rec := range users {
		mod, err := rec.ToModel(ctx)
		if err != nil {
			return fmt.Errorf("failed to build user %s: %w", rec.ID, err)
		}

		mod.ID = rec.ID
		userModels = append(userModels, mod)
	}

	tourModels := make([]tourModel.Tour, 0, len(tours))
	for _, rec := range tours {
		mod, _ := rec.ToModel(ctx)
		mod.ID = rec.ID
		mod.Slug = slug.Make(mod.Name)
		tourModels = append(tourModels, mod)
	}

	reviewModels := make([]reviewModel.Review, 0, len(reviews))
	reviewed := map[string]struct{}{}

	for _, rec := range reviews {
		mod, _ := rec.ToModel(ctx)
		mod.ID = rec.ID
		reviewModels = append(reviewModels, mod)
		reviewed[mod.TourID] = struct{}{}
	}

	if err = s.users.InsertBulk(ctx, userModels); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}

	if err = s.tours.InsertBulk(ctx, tourModels); err != nil {
		return fmt.Errorf("failed to import tours: %w", err)
	}

	if err = s.reviews.InsertBulk(ctx, reviewModels); err != nil {
		return fmt.Errorf("failed to import reviews: %w", err)
	}

	for tourID := range reviewed {
		if err = s.tours.RecalculateRatings(ctx, tourID); err != nil {
			return fmt.Errorf("failed to recalculate ratings of tour %s: %w", tourID, err)
		}
	}

	log.Info().
		Int("users", len(userModels)).
		Int("tours", len(tourModels)).
		Int("reviews", len(reviewModels)).
		Msg("Data successfully loaded")

	return nil
}

// Delete removes every row, children first.
func (s Seeder) Delete(ctx context.Context) error {
	steps := []struct {
		name  string
		purge func(context.Context) error
	}{
		{"bookings", s.bookings.Purge},
		{"reviews", s.reviews.Purge},
		{"tours", s.tours.Purge},
		{"users", s.users.Purge},
	}

	for _, step := range steps {
		if err := step.purge(ctx); err != nil {
			return fmt.Errorf("failed to delete %s: %w", step.name, err)
		}
	}

	log.Info().Msg("Data successfully deleted")

	return nil
}

func readRecords[T any](data fs.FS, name string) ([]T, error) {
	raw, err := fs.ReadFile(data, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var records []T
	if err = json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	for idx := range records {
		if err = validator.ValidateStruct(&records[idx]); err != nil {
			return nil, fmt.Errorf("%w: %s #%d: %w", ErrInvalidSeedRecord, name, idx, err)
		}
	}

	return records, nil
}
