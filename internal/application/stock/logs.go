package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const logNotFound = "Log entry not found"

// Issue hands out stock and records an issue log. Issuing more than the current
// quantity fails with ErrInsufficientStock and changes nothing. An issue against a lab
// request needs the request to match request_model and to be approved; the first issue
// moves it to Issued.
func (s *StockService) Issue(ctx context.Context, req IssueRequest) (*MutationResponse, error) {
	model, err := stock.ParseRequestModel(req.RequestModel)
	if err != nil {
		return nil, err
	}
	dateIssued, err := parseDate(req.DateIssued, "Invalid date issued.")
	if err != nil {
		return nil, err
	}
	against := model != stock.RequestModelNone && req.RequestID != nil
	if against {
		request, err := s.repos.Requests.FindByID(ctx, *req.RequestID)
		if err != nil {
			return nil, notFound(err, "Request not found")
		}
		if err := request.CheckIssuable(model); err != nil {
			return nil, err
		}
	}

	var (
		log    *stock.IssueLog
		issued *stock.Notification
	)
	result, err := s.mutate(ctx, "issue", req.ItemID, func(ctx context.Context, repos TransactionalRepositories, item *stock.StockItem) error {
		issued = nil
		l, err := stock.NewIssueLog(s.desc, item.ID, req.IssuedQuantity, model, req.RequestID, dateIssued, req.UserEmail)
		if err != nil {
			return err
		}
		if l.IssuedQuantity.GreaterThan(item.CurrentQuantity) {
			return shared.ErrInsufficientStock
		}
		if against {
			if issued, err = markRequestIssued(ctx, repos, *req.RequestID, model, req.UserEmail); err != nil {
				return err
			}
		}
		if err := repos.LogRepo().Save(ctx, l); err != nil {
			return err
		}
		log = l
		return item.Issue(l.IssuedQuantity)
	})
	if err != nil {
		return nil, s.itemNotFound(err)
	}
	if issued != nil {
		s.logger.Info("lab request issued",
			zap.String("request_id", req.RequestID.String()),
			zap.String("item_id", result.item.ID.String()),
		)
		s.publishNotifications(ctx, issued)
	}

	resp := s.decorateLog(log, result.item)
	return &MutationResponse{
		Message: s.desc.Singular() + " issued successfully",
		Item:    ToItemResponse(result.item),
		Log:     &resp,
	}, nil
}

// markRequestIssued re-checks the request inside the transaction and moves an approved
// request to Issued. It returns the request_issued notification when one was written.
func markRequestIssued(ctx context.Context, repos TransactionalRepositories, requestID uuid.UUID, model stock.RequestModel, actor string) (*stock.Notification, error) {
	request, err := repos.RequestRepo().FindByID(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "Request not found")
	}
	if err := request.CheckIssuable(model); err != nil {
		return nil, err
	}
	if !request.MarkIssued() {
		return nil, nil
	}
	if err := repos.RequestRepo().UpdateStatus(ctx, request, procurement.RequestApproved); err != nil {
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		// a concurrent issue against the same request got there first
		return nil, nil
	}
	if actor == "" {
		actor = "the lab"
	}
	n := procurement.NewRequestNotification(stock.NotificationRequestIssued, request, actor)
	inserted, err := repos.NotificationRepo().Create(ctx, n)
	if err != nil || !inserted {
		return nil, err
	}
	return n, nil
}

// Return records the returned and lost split of an issue and puts the returned
// quantity back into stock. Only returnable categories support it.
func (s *StockService) Return(ctx context.Context, logID uuid.UUID, req ReturnRequest) (*MutationResponse, error) {
	if err := s.requireReturnable(); err != nil {
		return nil, err
	}
	existing, err := s.repos.Logs.FindByID(ctx, s.desc.Category, logID)
	if err != nil {
		return nil, notFound(err, logNotFound)
	}
	if err := existing.ValidateReturn(req.ReturnedQuantity, req.LostOrDamagedQuantity); err != nil {
		return nil, err
	}
	dateReturned, err := parseDate(req.DateReturned, "Invalid date returned.")
	if err != nil {
		return nil, err
	}

	var log *stock.IssueLog
	result, err := s.mutate(ctx, "return", existing.ItemID, func(ctx context.Context, repos TransactionalRepositories, item *stock.StockItem) error {
		l, err := repos.LogRepo().FindByID(ctx, s.desc.Category, logID)
		if err != nil {
			return notFound(err, logNotFound)
		}
		delta, err := l.RecordReturn(req.ReturnedQuantity, req.LostOrDamagedQuantity, dateReturned)
		if err != nil {
			return err
		}
		if delta.IsNegative() {
			if err := item.AdjustIssued(delta.Neg()); err != nil {
				return err
			}
		} else if err := item.ReturnIssued(delta); err != nil {
			return err
		}
		log = l
		return repos.LogRepo().Save(ctx, l)
	})
	if err != nil {
		return nil, s.itemNotFound(err)
	}

	resp := s.decorateLog(log, result.item)
	return &MutationResponse{
		Message:                       s.desc.Singular() + " log returned successfully",
		Item:                          ToItemResponse(result.item),
		Log:                           &resp,
		StockRecoveryNotificationSent: result.recoverySent(),
	}, nil
}

// UpdateLog edits an issue log. A changed issued quantity moves the current stock
// by the difference; the new quantity must still be covered by stock.
func (s *StockService) UpdateLog(ctx context.Context, logID uuid.UUID, req UpdateLogRequest) (*MutationResponse, error) {
	existing, err := s.repos.Logs.FindByID(ctx, s.desc.Category, logID)
	if err != nil {
		return nil, notFound(err, logNotFound)
	}
	dateIssued, err := parseOptionalDate(req.DateIssued, "Invalid date issued.")
	if err != nil {
		return nil, err
	}

	var log *stock.IssueLog
	result, err := s.mutate(ctx, "update_log", existing.ItemID, func(ctx context.Context, repos TransactionalRepositories, item *stock.StockItem) error {
		l, err := repos.LogRepo().FindByID(ctx, s.desc.Category, logID)
		if err != nil {
			return notFound(err, logNotFound)
		}
		if req.IssuedQuantity != nil {
			delta, err := l.ChangeIssuedQuantity(*req.IssuedQuantity)
			if err != nil {
				return err
			}
			if !delta.IsZero() {
				if err := item.AdjustIssued(delta); err != nil {
					return err
				}
			}
		}
		l.UpdateMetadata(req.UserEmail, dateIssued)
		log = l
		return repos.LogRepo().Save(ctx, l)
	})
	if err != nil {
		return nil, s.itemNotFound(err)
	}

	resp := s.decorateLog(log, result.item)
	return &MutationResponse{
		Message:                       s.desc.Singular() + " log updated successfully",
		Item:                          ToItemResponse(result.item),
		Log:                           &resp,
		StockRecoveryNotificationSent: result.recoverySent(),
	}, nil
}

// DeleteLog removes an issue log and puts its outstanding quantity back into stock.
func (s *StockService) DeleteLog(ctx context.Context, logID uuid.UUID) (*MutationResponse, error) {
	existing, err := s.repos.Logs.FindByID(ctx, s.desc.Category, logID)
	if err != nil {
		return nil, notFound(err, logNotFound)
	}

	result, err := s.mutate(ctx, "delete_log", existing.ItemID, func(ctx context.Context, repos TransactionalRepositories, item *stock.StockItem) error {
		l, err := repos.LogRepo().FindByID(ctx, s.desc.Category, logID)
		if err != nil {
			return notFound(err, logNotFound)
		}
		if err := repos.LogRepo().Delete(ctx, l.ID); err != nil {
			return err
		}
		return item.ReverseIssue(decimal.Max(l.OutstandingQuantity(), decimal.Zero))
	})
	if err != nil {
		return nil, s.itemNotFound(err)
	}

	return &MutationResponse{
		Message:                       "Log entry deleted successfully",
		Item:                          ToItemResponse(result.item),
		StockRecoveryNotificationSent: result.recoverySent(),
	}, nil
}

// ListLogs returns a page of issue logs, newest first, each carrying its item and request codes.
// Request codes are resolved with one lookup per request model.
func (s *StockService) ListLogs(ctx context.Context, filter LogListFilter) ([]IssueLogResponse, int64, error) {
	from, to, err := dayRange(filter.From, filter.To)
	if err != nil {
		return nil, 0, err
	}
	domainFilter := stock.LogFilter{
		Filter:    pageOf(filter.Page, filter.PageSize),
		Category:  s.desc.Category,
		ItemCode:  filter.ItemCode,
		ItemName:  filter.ItemName,
		UserEmail: filter.UserEmail,
		From:      from,
		To:        to,
	}

	logs, err := s.repos.Logs.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Logs.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	itemIDs := make([]uuid.UUID, 0, len(logs))
	requestIDs := make(map[stock.RequestModel][]uuid.UUID)
	for _, l := range logs {
		itemIDs = append(itemIDs, l.ItemID)
		if l.RequestModel != stock.RequestModelNone && l.RequestID != nil {
			requestIDs[l.RequestModel] = append(requestIDs[l.RequestModel], *l.RequestID)
		}
	}
	items, err := s.itemsByID(ctx, itemIDs)
	if err != nil {
		return nil, 0, err
	}
	codes := make(map[stock.RequestModel]requestCodes, len(requestIDs))
	for model, ids := range requestIDs {
		requests, err := s.repos.Requests.FindByIDs(ctx, model, ids)
		if err != nil {
			return nil, 0, err
		}
		codes[model] = newRequestCodes(requests)
	}

	responses := make([]IssueLogResponse, len(logs))
	for i := range logs {
		responses[i] = ToIssueLogResponse(&logs[i])
		if item, ok := items[logs[i].ItemID]; ok {
			responses[i].ItemCode = item.ItemCode
			responses[i].ItemName = item.ItemName
		}
		if logs[i].RequestID != nil {
			responses[i].RequestCode = codes[logs[i].RequestModel][*logs[i].RequestID]
		}
	}
	return responses, total, nil
}

func (s *StockService) decorateLog(log *stock.IssueLog, item *stock.StockItem) IssueLogResponse {
	resp := ToIssueLogResponse(log)
	resp.ItemCode = item.ItemCode
	resp.ItemName = item.ItemName
	return resp
}
