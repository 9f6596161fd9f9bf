package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// windowsReservedChars are filename characters NTFS rejects. They are only
// treated as invalid when actually running on Windows; elsewhere they are
// legal, if inadvisable.
var windowsReservedChars = map[rune]bool{
	':': true, '|': true, '*': true, '?': true,
	'<': true, '>': true, '"': true,
}

// FilenameValidationError describes a log filename pattern that cannot be
// created on the current platform, with a corrected pattern to offer the
// user.
type FilenameValidationError struct {
	Pattern      string
	InvalidChars []rune
	Platform     string
	Suggestion   string
}

func (e *FilenameValidationError) Error() string {
	seen := make(map[rune]bool)
	var parts []string
	for _, r := range e.InvalidChars {
		if seen[r] {
			continue
		}
		seen[r] = true
		parts = append(parts, fmt.Sprintf("'%c' (%s)", r, charName(r)))
	}

	msg := fmt.Sprintf("invalid filename pattern %q: contains %s, not allowed on %s",
		e.Pattern, strings.Join(parts, ", "), e.Platform)
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; try %q instead", e.Suggestion)
	}
	return msg
}

// ValidateFilenamePattern checks a configured log filename pattern for
// characters the filesystem would reject. An empty pattern is valid; the
// caller substitutes the default. Path separators are always invalid
// because the pattern names a file inside the configured log directory.
func ValidateFilenamePattern(pattern string) error {
	if pattern == "" {
		return nil
	}

	var invalid []rune
	for _, r := range pattern {
		if r == '/' || r == '\\' {
			invalid = append(invalid, r)
		}
	}
	invalid = append(invalid, findInvalidCharsInFilename(pattern)...)

	if len(invalid) == 0 {
		return nil
	}
	return &FilenameValidationError{
		Pattern:      pattern,
		InvalidChars: invalid,
		Platform:     platformName(),
		Suggestion:   getSuggestionForFilename(pattern, pattern, invalid),
	}
}

// GetSafeFilenamePatterns returns example patterns that validate on every
// supported platform, for use in configuration error hints.
func GetSafeFilenamePatterns() []string {
	return []string{
		"app-YYYYMMDD.log",
		"app-YYYYMMDD-HHMMSS.log",
		"app-YYYY-MM-DD.log",
		"app_YYYY_MM_DD.log",
		"app.YYYY.MM.DD.log",
	}
}

// GetUnsafeFilenamePatterns returns patterns that fail (or risk failing)
// validation, mapped to the reason, for documentation and error hints.
func GetUnsafeFilenamePatterns() map[string]string {
	return map[string]string{
		"app-MM/DD/YYYY.log": "forward slashes are path separators",
		"app\\YYYY\\MM.log":  "backslashes are path separators on Windows",
		"app-HH:MM:SS.log":   "colons are reserved on Windows",
		"app-YYYY|MM.log":    "pipes are reserved on Windows",
		"app-*.log":          "asterisks are reserved on Windows",
	}
}

// findInvalidCharsInFilename reports each character of the filename that
// the current platform's filesystem rejects. Path separators are not
// checked here; callers decide whether the string may carry a directory.
func findInvalidCharsInFilename(filename string) []rune {
	var invalid []rune
	for _, r := range filename {
		switch {
		case r == 0:
			invalid = append(invalid, r)
		case runtime.GOOS == "windows" && windowsReservedChars[r]:
			invalid = append(invalid, r)
		}
	}
	return invalid
}

// getSuggestionForFilename rewrites the filename with each invalid
// character replaced by a dash, preserving the date placeholders.
func getSuggestionForFilename(fullPattern, filename string, invalidChars []rune) string {
	bad := make(map[rune]bool, len(invalidChars))
	for _, r := range invalidChars {
		bad[r] = true
	}
	return strings.Map(func(r rune) rune {
		if bad[r] || r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, filename)
}

func isAbsolutePath(path string) bool {
	return filepath.IsAbs(path)
}

// extractFilename returns the final path segment, accepting either
// separator so Windows-style configs parse on any platform.
func extractFilename(pattern string) string {
	if i := strings.LastIndexAny(pattern, `/\`); i >= 0 {
		return pattern[i+1:]
	}
	return pattern
}

// extractDirectory returns everything before the final separator, or ""
// for a bare filename.
func extractDirectory(pattern string) string {
	if i := strings.LastIndexAny(pattern, `/\`); i >= 0 {
		return pattern[:i]
	}
	return ""
}

func charName(r rune) string {
	switch r {
	case 0:
		return "null byte"
	case '/':
		return "forward slash"
	case '\\':
		return "backslash"
	case ':':
		return "colon"
	case '|':
		return "pipe"
	case '*':
		return "asterisk"
	case '?':
		return "question mark"
	case '<', '>':
		return "angle brackets"
	case '"':
		return "quotes"
	default:
		return "invalid character"
	}
}

func platformName() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows"
	case "darwin":
		return "macOS"
	case "linux":
		return "Linux"
	default:
		return runtime.GOOS
	}
}
