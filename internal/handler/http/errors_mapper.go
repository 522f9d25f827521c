package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-auth-portal/internal/app"
	"github.com/MKhiriev/go-auth-portal/internal/service"
)

type errorResponse struct {
	status  int
	message string
}

var errorStatusMap = []struct {
	target error
	errorResponse
}{
	{service.ErrInvalidDataProvided, errorResponse{http.StatusBadRequest, app.MsgInvalidDataProvided}},
	{service.ErrInvalidCredentials, errorResponse{http.StatusUnauthorized, app.MsgInvalidLogin}},
	{service.ErrUniquenessConflict, errorResponse{http.StatusConflict, app.MsgAlreadyTaken}},
	{service.ErrDeliveryFailure, errorResponse{http.StatusBadGateway, app.MsgConfirmationMailFailed}},
	{service.ErrAccountNotFound, errorResponse{http.StatusNotFound, service.ErrAccountNotFound.Error()}},
	{service.ErrTokenIsExpiredOrInvalid, errorResponse{http.StatusUnauthorized, app.MsgTokenIsExpiredOrInvalid}},
	{service.ErrVersionIsNotSpecified, errorResponse{http.StatusInternalServerError, app.MsgVersionIsNotSpecified}},
}

// statusFromError maps a service error to the status code and public message
// of an API response. Unknown errors become a generic 500.
func statusFromError(err error) (int, string) {
	for _, e := range errorStatusMap {
		if errors.Is(err, e.target) {
			return e.status, e.message
		}
	}
	return http.StatusInternalServerError, app.MsgInternalServerError
}
