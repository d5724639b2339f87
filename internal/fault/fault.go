// internal/fault/fault.go
package fault

import "fmt"

// Code is a numeric session fault code.
// Values below EngineBase are storage-layer failures; values at or above
// EngineBase are configuration or navigation failures raised by this engine.
type Code uint16

const EngineBase Code = 30

// ---- storage codes ----

const (
	CodeGeneric Code = 1
	CodeDisk    Code = 2
)

// ---- engine codes ----

const (
	CodeBadImage     Code = EngineBase + iota // directory selected where no folders exist
	CodeBadHxcSdfe                            // HXCSDFE.CFG signature or version
	CodeNoDirents                             // zero valid slots
	CodePathTooDeep                           // directory stack capacity exceeded
	CodeBadImageCfg                           // IMAGE_A.CFG trail inconsistent
)

// Error is a fatal-for-this-session condition.
type Error struct {
	code   Code
	detail string
}

func (e *Error) Error() string {
	if e.detail == "" {
		return fmt.Sprintf("fault %02d: %s", uint16(e.code), describe(e.code))
	}
	return fmt.Sprintf("fault %02d: %s: %s", uint16(e.code), describe(e.code), e.detail)
}

// Code exposes the numeric code for status export.
func (e *Error) Code() uint16 { return uint16(e.code) }

// Is matches any *Error with the same code, so sentinel comparisons
// work regardless of detail text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == e.code
}

// New builds a fault with extra detail.
func New(code Code, format string, args ...any) *Error {
	return &Error{code: code, detail: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is.
var (
	ErrDisk        = &Error{code: CodeDisk}
	ErrBadImage    = &Error{code: CodeBadImage}
	ErrBadHxcSdfe  = &Error{code: CodeBadHxcSdfe}
	ErrNoDirents   = &Error{code: CodeNoDirents}
	ErrPathTooDeep = &Error{code: CodePathTooDeep}
	ErrBadImageCfg = &Error{code: CodeBadImageCfg}
)

func describe(c Code) string {
	switch c {
	case CodeDisk:
		return "volume disconnected"
	case CodeBadImage:
		return "folders not supported in this mode"
	case CodeBadHxcSdfe:
		return "bad HXCSDFE.CFG"
	case CodeNoDirents:
		return "no images found"
	case CodePathTooDeep:
		return "path too deep"
	case CodeBadImageCfg:
		return "bad IMAGE_A.CFG"
	default:
		return "error"
	}
}

// Label renders the short front-panel form of a code.
// Engine codes read "*ERROR* nn", storage codes "*FATFS* nn".
func Label(code uint16) string {
	if Code(code) >= EngineBase {
		return fmt.Sprintf("*ERROR* %02d", code)
	}
	return fmt.Sprintf("*FATFS* %02d", code)
}
