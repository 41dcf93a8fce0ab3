package services

import (
	"context"

	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
	"vendorcover_backend/internal/services/dto"
	"vendorcover_backend/pkg/apperrors"
)

// ReviewService - отзывы по завершенным заявкам, один на пару (заявка, автор)
type ReviewService interface {
	Create(ctx context.Context, reviewerID, helpRequestID string, req *dto.CreateReviewRequest) (*models.Review, error)
	ListByReviewee(ctx context.Context, revieweeID string) ([]models.Review, error)
}

type reviewService struct {
	reviewRepo repositories.ReviewRepository
	jobRepo    repositories.HelpRequestRepository
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	jobRepo repositories.HelpRequestRepository,
) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, jobRepo: jobRepo}
}

func (s *reviewService) Create(ctx context.Context, reviewerID, helpRequestID string, req *dto.CreateReviewRequest) (*models.Review, error) {
	job, err := s.jobRepo.FindByID(helpRequestID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if job.Status != models.JobStatusCompleted {
		return nil, apperrors.ErrInvalidStatus("review", "reviews are allowed after job completion")
	}

	isRequester := job.RequesterID == reviewerID
	isVendor := job.AcceptedVendorID != nil && *job.AcceptedVendorID == reviewerID
	if !isRequester && !isVendor {
		return nil, apperrors.NewForbiddenError("only job parties can leave reviews")
	}

	if _, err := s.reviewRepo.FindByJobAndReviewer(helpRequestID, reviewerID); err == nil {
		return nil, apperrors.ErrAlreadyExists(nil)
	}

	review := &models.Review{
		HelpRequestID: helpRequestID,
		ReviewerID:    reviewerID,
		RevieweeID:    req.RevieweeID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return review, nil
}

func (s *reviewService) ListByReviewee(ctx context.Context, revieweeID string) ([]models.Review, error) {
	return s.reviewRepo.ListByReviewee(revieweeID)
}
