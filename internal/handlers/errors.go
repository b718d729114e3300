package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/repositories"
)

// httpError translates an engine/repository error kind into an HTTP
// response. The kind distinction is preserved: Forbidden is never
// reported as NotFound and vice versa.
func httpError(err error) *echo.HTTPError {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errs.KindForbidden:
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errs.KindConflict:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errs.KindValidation, errs.KindInvalidArgument:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errs.KindContention:
		// The transaction lost a race on a contended document; the
		// client may retry.
		return echo.NewHTTPError(http.StatusConflict, "operation conflicted with a concurrent update, please retry")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

// currentUser resolves the authenticated actor set by the auth
// middleware (local JWT user id or Firebase UID) to a user document.
func currentUser(c echo.Context, users repositories.UserRepository) (*models.User, *echo.HTTPError) {
	ctx := c.Request().Context()

	if userID, ok := c.Get("userID").(string); ok && userID != "" {
		id, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid user id in token")
		}
		user, err := users.GetByID(ctx, id)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not found in database")
		}
		return user, nil
	}

	if firebaseUID, ok := c.Get("firebaseUID").(string); ok && firebaseUID != "" {
		user, err := users.GetByFirebaseUID(ctx, firebaseUID)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not found in database")
		}
		return user, nil
	}

	return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
}

// parseObjectID parses a path parameter as a Mongo ObjectID.
func parseObjectID(c echo.Context, param string) (primitive.ObjectID, *echo.HTTPError) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+param)
	}
	return id, nil
}
