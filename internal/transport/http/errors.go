package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"glamai-server-go/internal/domain/analysis"
	domainauth "glamai-server-go/internal/domain/auth"
	domainimage "glamai-server-go/internal/domain/image"
	platformerrors "glamai-server-go/internal/platform/errors"
)

// statusClientClosedRequest is the nginx convention for a request the
// caller abandoned before the reply was ready.
const statusClientClosedRequest = 499

// StatusFor maps a domain error to the HTTP status it should travel
// under. Unknown errors are internal.
func StatusFor(err error) int {
	var (
		remoteErr    *analysis.RemoteError
		transportErr *analysis.TransportError
		parseErr     *analysis.ParseError
		schemaErr    *analysis.SchemaError
		backendErr   *domainauth.BackendError
	)

	switch {
	case errors.Is(err, analysis.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, domainimage.ErrCancelled):
		return statusClientClosedRequest
	case errors.Is(err, domainimage.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.As(err, &backendErr):
		return backendErr.Status
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway
	case errors.As(err, &transportErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &parseErr), errors.As(err, &schemaErr):
		return http.StatusBadGateway
	}

	switch platformerrors.KindOf(err) {
	case platformerrors.KindImage, platformerrors.KindDomain:
		return http.StatusBadRequest
	case platformerrors.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondFromError writes the failure envelope for a domain error.
func RespondFromError(c *gin.Context, err error) {
	_ = c.Error(err)
	RespondError(c, StatusFor(err), err.Error(), nil)
}
