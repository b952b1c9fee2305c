package library

import (
	"context"
	"time"

	"github.com/mkadlec/libris/core"
)

type NewReview struct {
	MemberID string `json:"member" validate:"required"`
	BookID   string `json:"book" validate:"required"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Comment  string `json:"comment"`
}

type ReviewService struct {
	repo   CatalogRepository
	events *Events
}

func NewReviewService(repo CatalogRepository, events *Events) *ReviewService {
	return &ReviewService{repo: repo, events: events}
}

func (svc *ReviewService) Add(ctx context.Context, nr NewReview) (Review, error) {
	if err := core.Validate.Struct(nr); err != nil {
		return Review{}, err
	}

	rv := Review{
		MemberID:  nr.MemberID,
		BookID:    nr.BookID,
		Rating:    nr.Rating,
		Comment:   core.CleanString(nr.Comment),
		CreatedAt: time.Now().UTC(),
	}
	rv, err := svc.repo.CreateReview(ctx, rv)
	if err != nil {
		return Review{}, err
	}

	svc.events.emitReviewCreated(ctx, rv)
	return rv, nil
}

type NewRequest struct {
	MemberID string `json:"member" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author"`
}

type RequestService struct {
	repo   CatalogRepository
	events *Events
}

func NewRequestService(repo CatalogRepository, events *Events) *RequestService {
	return &RequestService{repo: repo, events: events}
}

func (svc *RequestService) Add(ctx context.Context, nr NewRequest) (Request, error) {
	if err := core.Validate.Struct(nr); err != nil {
		return Request{}, err
	}

	rq := Request{
		MemberID:  nr.MemberID,
		Title:     core.CleanString(nr.Title),
		Author:    core.CleanString(nr.Author),
		CreatedAt: time.Now().UTC(),
	}
	rq, err := svc.repo.CreateRequest(ctx, rq)
	if err != nil {
		return Request{}, err
	}

	svc.events.emitRequestCreated(ctx, rq)
	return rq, nil
}
