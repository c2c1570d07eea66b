package procurement

import (
	"fmt"
	"time"

	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
)

// requestNotificationGrace keeps workflow notifications listed for a day past the date of requirement.
const requestNotificationGrace = 24 * time.Hour

func modelLabel(m stock.RequestModel) string {
	switch m {
	case stock.RequestModelOrderRequest:
		return "Order request"
	case stock.RequestModelNewIndent:
		return "New indent"
	default:
		return "Requisition"
	}
}

// NewRequestNotification builds the workflow notification for a reviewed or issued request.
// The request id is the notification's ItemID, so each request gets at most one of each type.
func NewRequestNotification(t stock.NotificationType, r *LabRequest, actor string) *stock.Notification {
	expires := r.DateOfRequirement.Add(requestNotificationGrace)
	n := &stock.Notification{
		BaseEntity: shared.NewBaseEntity(),
		ItemID:     r.ID,
		Type:       t,
		ExpiresAt:  &expires,
	}
	label := modelLabel(r.Model)
	switch t {
	case stock.NotificationRequestApproved:
		n.Title = fmt.Sprintf("%s Approved: %s", label, r.Code)
		n.Message = fmt.Sprintf("%s %s has been approved by %s.", label, r.Code, actor)
		n.SendTo = []string{stock.RoleFaculty, stock.RoleLabAssistant}
	case stock.NotificationRequestRejected:
		n.Title = fmt.Sprintf("%s Rejected: %s", label, r.Code)
		n.Message = fmt.Sprintf("%s %s has been rejected by %s.", label, r.Code, actor)
		n.SendTo = []string{stock.RoleFaculty, stock.RoleLabAssistant}
	case stock.NotificationRequestIssued:
		n.Title = fmt.Sprintf("%s Issued: %s", label, r.Code)
		n.Message = fmt.Sprintf("Stock has been issued against %s %s by %s.", label, r.Code, actor)
		n.SendTo = []string{stock.RoleAdmin, stock.RoleLabAssistant, stock.RoleFaculty}
	}
	return n
}

// ReviewNotificationType returns the notification type raised by a review decision.
func ReviewNotificationType(decision RequestStatus) stock.NotificationType {
	if decision == RequestRejected {
		return stock.NotificationRequestRejected
	}
	return stock.NotificationRequestApproved
}
