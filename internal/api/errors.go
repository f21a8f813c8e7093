package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dietcascade/portal-api/internal/service"
)

// respondError maps service errors onto HTTP responses. Store failures are
// logged with their cause; the client only sees a generic message.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	var validationErr *service.ValidationError
	var storeErr *service.StoreError

	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": validationErr.Fields})
	case errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrProgressNotFound),
		errors.Is(err, service.ErrDietPlanNotFound),
		errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.As(err, &storeErr):
		log.WithField("requestId", c.GetString(ContextRequestIDKey)).Errorf("Store failure during %s: %+v", storeErr.Op, storeErr.Err)
		abortWithError(c, http.StatusInternalServerError, "Could not save your changes. Please try again.")
	default:
		log.WithField("requestId", c.GetString(ContextRequestIDKey)).Errorf("Unexpected error: %+v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// paramObjectID reads an ObjectID path parameter, answering 400 when malformed.
func paramObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}
