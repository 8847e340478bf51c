package selection

import "errors"

var (
	ErrNoTabs           = errors.New("treatment has no tabs")
	ErrInvalidCategory  = errors.New("invalid selection category")
	ErrTabNotOffered    = errors.New("tab not offered for treatment")
	ErrFetchInFlight    = errors.New("fetch already in flight")
	ErrNoMorePages      = errors.New("no more pages")
	ErrItemNotFound     = errors.New("item not found")
	ErrManualEntryName  = errors.New("name is required")
	ErrManualEntryPrice = errors.New("price must be greater than zero")
)
