package worker

import (
	"github.com/spec-kit/auth-service/internal/service"
)

// StartSubscribers registers the event-driven side effects (notification
// delivery and the audit trail) at boot.
func StartSubscribers(notifications *service.NotificationService, audit *service.AuditService) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if audit != nil {
		audit.RegisterHandlers()
	}
}
