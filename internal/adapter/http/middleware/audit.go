package middleware

import (
	"encoding/json"
	"time"

	"hms-wallet-service/internal/core/domain"
	"hms-wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps route patterns to audit actions after the handler has run.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var hospitalID, userID *uuid.UUID
		if hid, exists := c.Get(CtxHospitalID); exists {
			if id, ok := hid.(uuid.UUID); ok {
				hospitalID = &id
			}
		}
		if uid, exists := c.Get(CtxUserID); exists {
			if id, ok := uid.(uuid.UUID); ok {
				userID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			HospitalID:   hospitalID,
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.Param("id"),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/wallets" && method == "POST":
		return domain.AuditActionCreateWallet, "wallet"
	case route == "/api/v1/wallets/:id/topup" && method == "POST":
		return domain.AuditActionTopUp, "wallet"
	case route == "/api/v1/wallets/:id/deduct" && method == "POST":
		return domain.AuditActionDeduct, "wallet"
	case route == "/api/v1/wallets/:id/status" && method == "PATCH":
		return domain.AuditActionSetStatus, "wallet"
	}
	return "", ""
}
