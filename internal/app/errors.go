package app

import (
	"errors"
	"fmt"
)

// ErrAuthentication means no bearer token could be obtained.
var ErrAuthentication = errors.New("authentication failed")

// ApiRequestError is returned for any non 2xx response from the catalog API.
type ApiRequestError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *ApiRequestError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d: %s", e.Endpoint, e.Status, e.Detail)
}
