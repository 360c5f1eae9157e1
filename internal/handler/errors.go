package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MauriceOS/snaktox-sub001/internal/apperr"
	"github.com/MauriceOS/snaktox-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto HTTP status codes
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	if errors.Is(err, context.DeadlineExceeded) {
		utils.DetailedErrorResponse(c, http.StatusGatewayTimeout, "request timed out", "timeout", "")
		return
	}
	if errors.Is(err, context.Canceled) {
		utils.DetailedErrorResponse(c, http.StatusRequestTimeout, "request cancelled", "cancelled", "")
		return
	}

	var message string
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	kind := apperr.KindOf(err)
	switch kind {
	case apperr.KindValidation:
		field := apperr.FieldOf(err)
		if field != "" {
			message = field + " " + message
		}
		utils.DetailedErrorResponse(c, http.StatusBadRequest, message, string(kind), field)
	case apperr.KindNotFound:
		utils.DetailedErrorResponse(c, http.StatusNotFound, message, string(kind), "")
	case apperr.KindConflict:
		utils.DetailedErrorResponse(c, http.StatusConflict, message, string(kind), "")
	case apperr.KindInfrastructure:
		utils.DetailedErrorResponse(c, http.StatusServiceUnavailable, message, string(kind), "")
	default:
		utils.DetailedErrorResponse(c, http.StatusInternalServerError, "internal server error", string(apperr.KindInternal), "")
	}
}

// bindJSON decodes the request body into obj, rejecting unknown fields and trailing data
func bindJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

// respondBindError reports a request body that could not be decoded
func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	utils.DetailedErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error(), string(apperr.KindValidation), "")
}

// checkQueryKeys rejects query parameters outside allowed
func checkQueryKeys(c *gin.Context, op string, allowed ...string) error {
	for key := range c.Request.URL.Query() {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return apperr.Validation(op, key, "is not a recognized query parameter")
		}
	}
	return nil
}

func queryBool(c *gin.Context, op, key string) (bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Validation(op, key, "must be true or false")
	}
	return v, nil
}

func queryFloat(c *gin.Context, op, key string, fallback float64, required bool) (float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		if required {
			return 0, apperr.Validation(op, key, "is required")
		}
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.Validation(op, key, fmt.Sprintf("%q is not a number", raw))
	}
	return v, nil
}

func queryInt(c *gin.Context, op, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(op, key, fmt.Sprintf("%q is not an integer", raw))
	}
	return v, nil
}
