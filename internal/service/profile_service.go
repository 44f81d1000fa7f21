package service

import (
	"context"
	"errors"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/internal/storage"
	"github.com/Goh0809/Eventora-Backend/pkg/clock"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ProfileService defines the interface for profile business logic
type ProfileService interface {
	// Get returns the caller's own profile
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	// Update applies a partial update to the caller's profile
	Update(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.Profile, error)
	// Public returns the fields other users may see
	Public(ctx context.Context, userID string) (*domain.PublicProfile, error)
	// UploadAvatar stores an avatar image and returns its public URL
	UploadAvatar(ctx context.Context, userID string, file *storage.File) (*dto.AvatarResponse, error)
}

type profileService struct {
	repo         repository.ProfileRepository
	store        storage.ObjectStore
	avatarBucket string
	clock        clock.Clock
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo repository.ProfileRepository, store storage.ObjectStore, avatarBucket string, clk clock.Clock) ProfileService {
	if avatarBucket == "" {
		avatarBucket = "avatars"
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &profileService{repo: repo, store: store, avatarBucket: avatarBucket, clock: clk}
}

func (s *profileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.profile.get")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		telemetry.FailSpan(span, err, "lookup failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.profile.update")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	if req == nil || req.ToDomain().IsEmpty() {
		span.SetStatus(codes.Error, "no fields")
		return nil, domain.ErrNoProfileFields
	}

	profile, err := s.repo.Update(ctx, userID, req.ToDomain(), s.clock.Now())
	if err != nil {
		telemetry.FailSpan(span, err, "update failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return profile, nil
}

func (s *profileService) Public(ctx context.Context, userID string) (*domain.PublicProfile, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.profile.public")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrUserNotFound
		}
		telemetry.FailSpan(span, err, "lookup failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &domain.PublicProfile{
		FullName:  profile.FullName,
		Email:     profile.Email,
		Bio:       profile.Bio,
		AvatarURL: profile.AvatarURL,
	}, nil
}

func (s *profileService) UploadAvatar(ctx context.Context, userID string, file *storage.File) (*dto.AvatarResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.profile.upload_avatar")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	if err := storage.ValidateImage(file); err != nil {
		span.SetStatus(codes.Error, "invalid image")
		return nil, err
	}

	objectPath := storage.ObjectName(file.Filename, userID)
	if err := s.store.Upload(ctx, s.avatarBucket, objectPath, file.ContentType, file.Data); err != nil {
		telemetry.FailSpan(span, err, "upload failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.AvatarResponse{AvatarURL: s.store.PublicURL(s.avatarBucket, objectPath)}, nil
}
