package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// LabRequestService opens lab requests, allocates their monthly codes and records the
// approval decision that lets stock be issued against them.
type LabRequestService struct {
	repo           procurement.LabRequestRepository
	notifications  stock.NotificationRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewLabRequestService creates a new LabRequestService.
func NewLabRequestService(repo procurement.LabRequestRepository, notifications stock.NotificationRepository) *LabRequestService {
	return &LabRequestService{repo: repo, notifications: notifications, logger: zap.NewNop(), now: time.Now}
}

// SetEventPublisher sets the publisher for workflow notification events.
func (s *LabRequestService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger.
func (s *LabRequestService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create opens a pending request. A code taken by a concurrent create is retried once.
func (s *LabRequestService) Create(ctx context.Context, req CreateLabRequestRequest, requestedBy string) (*LabRequestResponse, error) {
	model, err := stock.ParseRequestModel(req.Model)
	if err != nil {
		return nil, err
	}
	required, err := parseRequirementDate(req.DateOfRequirement)
	if err != nil {
		return nil, err
	}
	prefix, err := procurement.RequestCodePrefix(model, s.now())
	if err != nil {
		return nil, err
	}

	var request *procurement.LabRequest
	for attempt := 0; attempt < 2; attempt++ {
		codes, err := s.repo.CodesWithPrefix(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to read request codes: %w", err)
		}
		request, err = procurement.NewLabRequest(model, procurement.NextRequestCode(prefix, codes), req.Purpose, required, requestedBy, req.Remark)
		if err != nil {
			return nil, err
		}
		err = s.repo.Save(ctx, request)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrAlreadyExists) || attempt == 1 {
			return nil, err
		}
		s.logger.Warn("request code collision, regenerating", zap.String("code", request.Code))
	}

	s.logger.Info("lab request created",
		zap.String("request_id", request.ID.String()),
		zap.String("code", request.Code),
		zap.String("model", string(model)),
	)
	resp := ToLabRequestResponse(request)
	return &resp, nil
}

// Get returns one request.
func (s *LabRequestService) Get(ctx context.Context, id uuid.UUID) (*LabRequestResponse, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Request not found")
	}
	resp := ToLabRequestResponse(request)
	return &resp, nil
}

// List returns one page of requests, newest first, optionally narrowed to a model and status.
func (s *LabRequestService) List(ctx context.Context, filter LabRequestListFilter) ([]LabRequestResponse, int64, error) {
	f, err := filter.toDomain()
	if err != nil {
		return nil, 0, err
	}
	requests, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}
	out := make([]LabRequestResponse, len(requests))
	for i := range requests {
		out[i] = ToLabRequestResponse(&requests[i])
	}
	return out, total, nil
}

// Review approves or rejects a pending request and notifies the requester's side.
// Reviewing a request that is no longer pending fails with INVALID_STATE.
func (s *LabRequestService) Review(ctx context.Context, id uuid.UUID, req ReviewLabRequestRequest, reviewer string) (*LabRequestResponse, error) {
	decision, err := procurement.ParseReviewDecision(req.Status)
	if err != nil {
		return nil, err
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Request not found")
	}
	if err := request.Review(decision, reviewer, req.Remark, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, request, procurement.RequestPending); err != nil {
		return nil, err
	}
	s.logger.Info("lab request reviewed",
		zap.String("request_id", request.ID.String()),
		zap.String("code", request.Code),
		zap.String("status", string(request.Status)),
		zap.String("reviewed_by", reviewer),
	)

	if s.notifications != nil {
		if reviewer == "" {
			reviewer = "an administrator"
		}
		n := procurement.NewRequestNotification(procurement.ReviewNotificationType(decision), request, reviewer)
		inserted, err := s.notifications.Create(ctx, n)
		if err != nil {
			// the decision is stored; a missing notification must not undo it
			s.logger.Error("failed to create review notification", zap.String("request_id", request.ID.String()), zap.Error(err))
		} else if inserted && s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(ctx, stock.NewStockNotificationCreatedEvent(n)); err != nil {
				s.logger.Error("failed to publish notification event", zap.String("notification_id", n.ID.String()), zap.Error(err))
			}
		}
	}

	resp := ToLabRequestResponse(request)
	return &resp, nil
}

func parseRequirementDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Invalid date of requirement.")
	}
	return t, nil
}
