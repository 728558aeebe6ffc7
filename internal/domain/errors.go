package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrBackupNotFound signals a missing backup bundle.
	ErrBackupNotFound = errors.New("backup not found")
	// ErrChecksumMismatch signals a backup payload that fails integrity verification.
	ErrChecksumMismatch = errors.New("backup checksum mismatch")
	// ErrInvalidBackup signals a backup payload that cannot be parsed.
	ErrInvalidBackup = errors.New("invalid backup format")
	// ErrInvalidQuery signals a malformed search query (bad filter, operator or sort).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrAssistantProviderError signals a chat provider failure.
	ErrAssistantProviderError = errors.New("assistant provider error")
	// ErrContentTooLarge signals an upload exceeding the configured size limit.
	ErrContentTooLarge = errors.New("content too large")
)
