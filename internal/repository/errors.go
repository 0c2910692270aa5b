// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrAlreadySold indicates that a buyer attempted to purchase
// a listing that has already been finalized, while ErrPaymentMismatch
// signals that the payment attached to a sale does not equal the
// listed price.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not control. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrCollectionNotFound is returned when a collection id does not exist.
var ErrCollectionNotFound = errors.New("collection not found")

// ErrTokenNotFound is returned when a token number was never minted in
// the referenced collection.
var ErrTokenNotFound = errors.New("token not found")

// ErrItemNotFound is returned when a market item id does not exist.
var ErrItemNotFound = errors.New("market item not found")

// ErrAccountNotFound is returned when a referenced account id does not
// exist, e.g. the destination of a token transfer.
var ErrAccountNotFound = errors.New("account not found")

// ErrNotTokenOwner is returned when a caller tries to list or transfer
// a token they do not currently own. Handlers should translate this
// into an HTTP 403 response.
var ErrNotTokenOwner = errors.New("not token owner")

// ErrAlreadySold is returned when a sale is attempted on a finalized
// listing. The Listed -> Sold transition happens exactly once.
// Handlers should translate this into an HTTP 409 response.
var ErrAlreadySold = errors.New("item already sold")

// ErrPaymentMismatch is returned when the payment attached to a sale
// does not equal the listed price. Sales use exact-match semantics.
var ErrPaymentMismatch = errors.New("payment does not match listed price")

// ErrInsufficientFunds is returned when the buyer's balance cannot
// cover the listed price. Handlers should translate this into an
// HTTP 402 response.
var ErrInsufficientFunds = errors.New("insufficient funds")
