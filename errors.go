package main

import "errors"

// ErrNotFound is returned when a document does not exist in the store.
var ErrNotFound = errors.New("item not found")

// ErrInvalidID is returned for identifiers that are not well-formed UUIDs.
var ErrInvalidID = errors.New("invalid id format")

// ErrAlreadyRecovered is returned when a recovery claim already exists for
// the referenced item.
var ErrAlreadyRecovered = errors.New("item already recovered")

// ErrEmailRequired is returned when a token payload carries no email.
var ErrEmailRequired = errors.New("email is required")
