//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import "fmt"

// ArchiveError represents a fatal failure on the top-level input: the
// archive could not be extracted or the staged tree could not be walked.
// Failures on individual classpath entries never surface as ArchiveError.
type ArchiveError struct {
	Base Error `json:"error"`

	// Path is the archive or directory being processed.
	Path string `json:"path"`

	// Member is the archive member being written when the failure happened.
	Member string `json:"member,omitempty"`
}

// NewExtractError creates an ArchiveError for a failed extraction.
func NewExtractError(path string, cause error) *ArchiveError {
	return &ArchiveError{
		Base: Error{
			Category: CategoryArchive,
			Code:     CodeExtractFailed,
			Message:  "failed to extract archive",
			Cause:    cause,
		},
		Path: path,
	}
}

// NewScanError creates an ArchiveError for a failed walk of the input tree.
func NewScanError(path string, cause error) *ArchiveError {
	return &ArchiveError{
		Base: Error{
			Category: CategoryArchive,
			Code:     CodeScanFailed,
			Message:  "failed to collect classpath entries",
			Cause:    cause,
		},
		Path: path,
	}
}

// WithMember sets the archive member.
func (e *ArchiveError) WithMember(member string) *ArchiveError {
	e.Member = member
	return e
}

// Error implements the error interface.
func (e *ArchiveError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error.
func (e *ArchiveError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *ArchiveError) Is(target error) bool {
	t, ok := target.(*ArchiveError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}

// WorkdirError represents a failure to prepare the extraction directory.
type WorkdirError struct {
	Base Error `json:"error"`

	// Dir is the working directory.
	Dir string `json:"dir"`

	// LockFile is the path to the lock file (if applicable).
	LockFile string `json:"lockFile,omitempty"`
}

// NewWorkdirError creates a WorkdirError.
func NewWorkdirError(dir string, cause error) *WorkdirError {
	return &WorkdirError{
		Base: Error{
			Category: CategoryWorkdir,
			Code:     CodeWorkdirFailed,
			Message:  "failed to prepare working directory",
			Cause:    cause,
		},
		Dir: dir,
	}
}

// NewWorkdirLockedError creates a WorkdirError for a directory held by
// another run.
func NewWorkdirLockedError(dir, lockFile string) *WorkdirError {
	hint := fmt.Sprintf("Wait for the other run to finish, pass another working directory, or\nrun 'rm %s' if it's stale.", lockFile)
	return &WorkdirError{
		Base: Error{
			Category: CategoryWorkdir,
			Code:     CodeWorkdirLocked,
			Message:  "working directory locked",
			Hint:     hint,
		},
		Dir:      dir,
		LockFile: lockFile,
	}
}

// Error implements the error interface.
func (e *WorkdirError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error.
func (e *WorkdirError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *WorkdirError) Is(target error) bool {
	t, ok := target.(*WorkdirError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
