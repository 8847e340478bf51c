package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive    = errors.New("ACCOUNT_INACTIVE")
	ErrPanelNotFound      = errors.New("PANEL_NOT_FOUND")
	ErrPanelForbidden     = errors.New("PANEL_FORBIDDEN")
	ErrUnknownTreatment   = errors.New("UNKNOWN_TREATMENT")
	ErrItemNotFound       = errors.New("ITEM_NOT_FOUND")
	ErrInvalidImport      = errors.New("INVALID_IMPORT")
)
