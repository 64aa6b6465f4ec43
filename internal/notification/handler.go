package notification

import (
	"errors"
	"net/http"

	"AcademyNotify/internal/auth"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler handles HTTP requests for notifications.
type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// SendBroadcast lets an admin notify a role-based audience.
func (h *NotificationHandler) SendBroadcast(c echo.Context) error {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Must be authenticated to send notifications"})
	}
	callerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid caller identity"})
	}

	var req BroadcastRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	result, err := h.service.SendBroadcast(c.Request().Context(), callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidAudience):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrPermissionDenied):
			return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error sending notifications"})
		}
	}
	return c.JSON(http.StatusOK, result)
}

// ListNotifications returns the caller's notification history.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid caller identity"})
	}

	records, err := h.service.ListNotifications(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch notifications"})
	}
	if records == nil {
		records = []*NotificationRecord{}
	}
	return c.JSON(http.StatusOK, records)
}
