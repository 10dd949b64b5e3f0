package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

var errInvalidID = errors.New("invalid id")

// actorFrom builds the acting user from the claims the auth middleware stored.
func actorFrom(c *gin.Context) services.Actor {
	actor := services.Actor{Role: c.GetString(middlewares.CtxRole)}
	if v, ok := c.Get(middlewares.CtxUserID); ok {
		if id, ok := v.(uint); ok {
			actor.UserID = id
		}
	}
	return actor
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrMissingField), errors.Is(err, services.ErrInvalidField):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTableNotFound), errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrCapacityExceeded), errors.Is(err, services.ErrPastDateTime):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSlotConflict), errors.Is(err, services.ErrTransition), errors.Is(err, services.ErrDuplicateTable):
		return http.StatusConflict
	case errors.Is(err, services.ErrPermissionDenied):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondServiceError answers with the mapped status and error code. Unexpected errors are
// logged and hidden behind a generic message.
func respondServiceError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		utils.ErrorLogger.WithField("request_id", c.GetString("request_id")).
			Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		_ = c.Error(err)
		utils.RespondErrorCode(c, status, "internal_error", errors.New("internal server error"))
		return
	}
	utils.RespondErrorCode(c, status, services.ErrorCode(err), err)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondErrorCode(c, http.StatusBadRequest, "invalid_field", errInvalidID)
		return 0, false
	}
	return uint(id), true
}

// pageFrom reads ?page= and ?page_size=; page_size is capped at 100.
func pageFrom(c *gin.Context, defaultSize int) services.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || size < 1 {
		size = defaultSize
	}
	if size > 100 {
		size = 100
	}
	return services.Page{Number: page, Size: size}
}

func paged(items interface{}, total int64, page services.Page) utils.Paged {
	return utils.Paged{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: services.TotalPages(total, page.Size),
	}
}

func badRequest(c *gin.Context, err error) {
	utils.RespondErrorCode(c, http.StatusBadRequest, "invalid_field", err)
}
