package network

import (
	"github.com/kbukum/beankit/errors"
)

func errNotConnected(url string) *errors.AppError {
	return errors.ServiceUnavailable("network client").WithDetail("url", url)
}
