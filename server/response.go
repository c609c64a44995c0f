package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/beankit/errors"
)

// DataResponse wraps every successful JSON body.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError writes err with the status its AppError carries. Errors
// without one are reported as internal errors.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	if appErr.Code == apperrors.ErrCodeInternal {
		_ = c.Error(err)
	}
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

func RespondOK(c *gin.Context, data any) {
	respond(c, http.StatusOK, data)
}

func RespondCreated(c *gin.Context, data any) {
	respond(c, http.StatusCreated, data)
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, DataResponse{Data: data})
}
