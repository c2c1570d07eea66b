package procurement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
)

// RequestStatus is the approval state of a lab request.
// Pending moves to Approved or Rejected; only Approved moves on to Issued.
type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
	RequestIssued   RequestStatus = "Issued"
)

// ParseReviewDecision accepts Approved or Rejected, case-insensitively.
func ParseReviewDecision(s string) (RequestStatus, error) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(RequestApproved)):
		return RequestApproved, nil
	case strings.EqualFold(strings.TrimSpace(s), string(RequestRejected)):
		return RequestRejected, nil
	}
	return "", shared.NewDomainError("INVALID_STATUS", "Status must be Approved or Rejected")
}

// ParseRequestStatus validates a status name, case-insensitively.
func ParseRequestStatus(s string) (RequestStatus, error) {
	for _, st := range []RequestStatus{RequestPending, RequestApproved, RequestRejected, RequestIssued} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", shared.NewDomainError("INVALID_STATUS", "Unknown request status: "+s)
}

// LabRequest is a requisition, order request or new indent that stock is issued against.
type LabRequest struct {
	shared.BaseEntity
	Model             stock.RequestModel
	Code              string
	Purpose           string
	DateOfRequirement time.Time
	Status            RequestStatus
	RequestedBy       string
	Remark            string
	ReviewedBy        string
	ReviewedAt        *time.Time
}

// NewLabRequest creates a pending request with an already allocated code.
func NewLabRequest(model stock.RequestModel, code, purpose string, dateOfRequirement time.Time, requestedBy, remark string) (*LabRequest, error) {
	if model == stock.RequestModelNone {
		return nil, shared.NewDomainError("INVALID_REQUEST_MODEL", "Request model is required")
	}
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST_CODE", "Request code is required")
	}
	if strings.TrimSpace(purpose) == "" {
		return nil, shared.NewDomainError("INVALID_PURPOSE", "Purpose is required")
	}
	if dateOfRequirement.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Date of requirement is required")
	}
	return &LabRequest{
		BaseEntity:        shared.NewBaseEntity(),
		Model:             model,
		Code:              code,
		Purpose:           strings.TrimSpace(purpose),
		DateOfRequirement: dateOfRequirement,
		Status:            RequestPending,
		RequestedBy:       requestedBy,
		Remark:            strings.TrimSpace(remark),
	}, nil
}

// Review approves or rejects a pending request. A non-empty remark replaces the stored one.
func (r *LabRequest) Review(decision RequestStatus, reviewer, remark string, at time.Time) error {
	if decision != RequestApproved && decision != RequestRejected {
		return shared.NewDomainError("INVALID_STATUS", "Status must be Approved or Rejected")
	}
	if r.Status != RequestPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Request %s is already %s", r.Code, r.Status))
	}
	r.Status = decision
	r.ReviewedBy = reviewer
	r.ReviewedAt = &at
	if remark = strings.TrimSpace(remark); remark != "" {
		r.Remark = remark
	}
	r.Touch()
	return nil
}

// CheckIssuable returns an error unless stock may be issued against the request.
// Issued requests stay issuable so one request can cover several items.
func (r *LabRequest) CheckIssuable(model stock.RequestModel) error {
	if r.Model != model {
		return shared.NewDomainError("INVALID_REQUEST_MODEL",
			fmt.Sprintf("Request %s belongs to %s, not %s", r.Code, r.Model, model))
	}
	if r.Status != RequestApproved && r.Status != RequestIssued {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Request %s is %s; stock can only be issued against an approved request", r.Code, r.Status))
	}
	return nil
}

// MarkIssued moves an approved request to Issued and reports whether the status changed.
func (r *LabRequest) MarkIssued() bool {
	if r.Status != RequestApproved {
		return false
	}
	r.Status = RequestIssued
	r.Touch()
	return true
}

// RequestCodePrefix returns REQ, ORD or IND followed by the year and month, e.g. "REQ-202501-".
func RequestCodePrefix(model stock.RequestModel, now time.Time) (string, error) {
	var p string
	switch model {
	case stock.RequestModelRequisition:
		p = "REQ"
	case stock.RequestModelOrderRequest:
		p = "ORD"
	case stock.RequestModelNewIndent:
		p = "IND"
	default:
		return "", shared.NewDomainError("INVALID_REQUEST_MODEL", "Request model is required")
	}
	return fmt.Sprintf("%s-%04d%02d-", p, now.Year(), int(now.Month())), nil
}

// NextRequestCode returns the code after the highest existing code of the month.
// The sequence restarts at 001 every month.
func NextRequestCode(prefix string, existing []string) string {
	highest := 0
	for _, code := range existing {
		if !strings.HasPrefix(code, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(code, prefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, highest+1)
}
