// Package errors provides custom error types for inventory operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrUnauthorized = errors.New("operation requires admin role")
var ErrNotReady = errors.New("inventory is not loaded")
var ErrRefreshInFlight = errors.New("refresh already in progress")
