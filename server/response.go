package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/speechkit/errors"
)

// DataResponse wraps every successful JSON body so clients can rely on a
// single envelope shape across endpoints.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondOK writes a 200 with data in the standard envelope.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondWithError maps err onto the wire. An *apperrors.AppError carries
// its own status and body; anything else becomes an opaque 500.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err)
	}
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}
