package errorutil

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

// FileError represents a file operation error with additional context
type FileError struct {
	Operation  string      // The operation that failed (e.g., "open", "create")
	Path       string      // The file path that was being accessed
	Size       int64       // File size (if applicable)
	Perm       os.FileMode // File permissions (if applicable)
	Underlying error       // The underlying error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s operation failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error {
	return e.Underlying
}

// NewFileError creates a new FileError with proper context
func NewFileError(operation, path string, err error) *FileError {
	fileErr := &FileError{
		Operation:  operation,
		Path:       path,
		Underlying: err,
	}

	// Try to get file info for additional context
	if info, statErr := os.Stat(path); statErr == nil {
		fileErr.Size = info.Size()
		fileErr.Perm = info.Mode()
	}

	return fileErr
}

// LogFileError logs a file error with appropriate structured context
func LogFileError(logger *slog.Logger, fileErr *FileError) *FileError {
	if logger == nil {
		return fileErr
	}

	attrs := []slog.Attr{
		slog.String("operation", fileErr.Operation),
		slog.String("file_path", fileErr.Path),
		slog.String("error", fileErr.Underlying.Error()),
		slog.String("error_type", getFileErrorType(fileErr.Underlying)),
	}

	if fileErr.Size > 0 {
		attrs = append(attrs, slog.Int64("file_size", fileErr.Size))
	}

	if fileErr.Perm != 0 {
		attrs = append(attrs, slog.String("file_permissions", fileErr.Perm.String()))
	}

	dir := filepath.Dir(fileErr.Path)
	if dir != "." {
		attrs = append(attrs, slog.String("directory", dir))
	}

	anyAttrs := make([]any, len(attrs))
	for i, attr := range attrs {
		anyAttrs[i] = attr
	}

	logger.Error("File operation failed", anyAttrs...)
	return fileErr
}

// getFileErrorType returns a human-readable error type classification
func getFileErrorType(err error) string {
	if err == nil {
		return "unknown"
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		return "file_not_found"
	}
	if errors.Is(err, fs.ErrPermission) || errors.Is(err, os.ErrPermission) {
		return "permission_denied"
	}
	if errors.Is(err, fs.ErrExist) || errors.Is(err, os.ErrExist) {
		return "file_exists"
	}
	if errors.Is(err, syscall.ENOSPC) {
		return "no_space_left"
	}
	if errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE) {
		return "too_many_open_files"
	}

	if pathErr, ok := err.(*os.PathError); ok {
		return fmt.Sprintf("path_error_%s", pathErr.Op)
	}

	return "generic_file_error"
}

// EnsureDirectoryWithLogging ensures a directory exists, logging any errors
func EnsureDirectoryWithLogging(logger *slog.Logger, path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		fileErr := NewFileError("create", path, err)
		LogFileError(logger, fileErr)
		return fileErr
	}

	if logger != nil {
		logger.Debug("Directory ensured",
			slog.String("directory_path", path),
			slog.String("permissions", perm.String()))
	}

	return nil
}
