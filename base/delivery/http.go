package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

// errStatus maps domain sentinels to http codes, first match wins
var errStatus = []struct {
	err    error
	status int
}{
	{domain.ErrNotFound, http.StatusNotFound},
	{query.ErrNotFound, http.StatusNotFound},
	{domain.ErrInvalidSignature, http.StatusUnauthorized},
	{domain.ErrNotApproved, http.StatusForbidden},
	{domain.ErrUnauthorized, http.StatusForbidden},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrPriceMismatch, http.StatusConflict},
	{domain.ErrNoActiveBid, http.StatusNotFound},
	{domain.ErrInvalidAmount, http.StatusBadRequest},
	{domain.ErrInvalidAddress, http.StatusBadRequest},
	{domain.ErrBadParamInput, http.StatusBadRequest},
	{domain.ErrInvalidNumberFormat, http.StatusBadRequest},
	{domain.ErrUnsupportedAsset, http.StatusUnprocessableEntity},
	{domain.ErrTransferFailed, http.StatusUnprocessableEntity},
}

// StatusOf returns the http code for err, fallback when nothing matches
func StatusOf(err error, fallback int) int {
	for _, m := range errStatus {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return fallback
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = StatusOf(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
