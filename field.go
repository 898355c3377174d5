package teamslog

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	pkgerrors "github.com/pkg/errors"
)

// SnoozeKey is the reserved fact name that is turned into a "Snooze" button.
const SnoozeKey = "snooze"

type fieldKind uint8

const (
	fieldKindInvalid fieldKind = iota
	fieldKindNamedValue
	fieldKindScalar
	fieldKindError
)

// Field is one entry of a record's context.
// Fields are built with F, Any, Err or Snooze; the zero value is treated as a
// malformed entry and rendered as an unnamed fact.
type Field struct {
	Key string

	kind  fieldKind
	value string
	raw   interface{}
	err   *ErrorDetails
}

// ErrorDetails is the flattened form of an error carried by a Field.
type ErrorDetails struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Trace   string `json:"trace"`
}

// F returns a field that is already in name/value form.
func F(name, value string) Field {
	return Field{Key: name, kind: fieldKindNamedValue, value: value}
}

// Snooze returns the field that adds a "Snooze" action opening uri.
func Snooze(uri string) Field {
	return F(SnoozeKey, uri)
}

// Any returns a field holding an arbitrary value. The value is rendered when
// the record is normalized.
func Any(key string, v interface{}) Field {
	if err, ok := v.(error); ok && err != nil && !isNilPointer(v) {
		return newErrorField(key, err)
	}

	return Field{Key: key, kind: fieldKindScalar, raw: v}
}

// Err returns a field describing err. When err carries no stack trace of its
// own, the call site of Err is recorded instead. A nil err, typed or not,
// becomes a plain field.
func Err(key string, err error) Field {
	if err == nil || isNilPointer(err) {
		return Field{Key: key, kind: fieldKindScalar, raw: err}
	}

	return newErrorField(key, err)
}

func newErrorField(key string, err error) Field {
	return Field{Key: key, kind: fieldKindError, raw: err, err: errorDetailsOf(err)}
}

// IsError reports whether the field carries an error.
func (f Field) IsError() bool {
	return f.kind == fieldKindError
}

// Details returns the flattened error of an error field, or nil.
func (f Field) Details() *ErrorDetails {
	return f.err
}

// Value returns the field value rendered as fact text.
// Error fields return the error message.
func (f Field) Value() string {
	switch f.kind {
	case fieldKindNamedValue:
		return f.value
	case fieldKindError:
		return f.err.Message
	default:
		return stringify(f.raw)
	}
}

// --- error flattening ---

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

type stringCoder interface {
	Code() string
}

type intCoder interface {
	Code() int
}

// errorDetailsOf never panics: a panicking Error, Code or StackTrace method
// yields details holding the panic message.
func errorDetailsOf(err error) (d *ErrorDetails) {
	defer func() {
		if r := recover(); r != nil {
			d = &ErrorDetails{Message: panicText(r), Code: "0", File: "unknown"}
		}
	}()

	d = &ErrorDetails{
		Message: err.Error(),
		Code:    errorCode(err),
		File:    "unknown",
	}

	var st stackTracer
	if errors.As(err, &st) && len(st.StackTrace()) > 0 {
		frames := st.StackTrace()
		d.File = frameFile(frames[0])
		d.Line, _ = strconv.Atoi(fmt.Sprintf("%d", frames[0]))
		d.Trace = strings.TrimPrefix(fmt.Sprintf("%+v", frames), "\n")

		return d
	}

	// Frames of this module and of logging frameworks are skipped below.
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder

	first := true
	for {
		frame, more := frames.Next()

		if !isLoggingFrame(frame) {
			if first {
				d.File = frame.File
				d.Line = frame.Line
				first = false
			}

			if b.Len() > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s\n\t%s:%d", frame.Function, frame.File, frame.Line)
		}

		if !more {
			break
		}
	}

	d.Trace = b.String()

	return d
}

func errorCode(err error) string {
	var sc stringCoder
	if errors.As(err, &sc) {
		return sc.Code()
	}

	var ic intCoder
	if errors.As(err, &ic) {
		return strconv.Itoa(ic.Code())
	}

	return "0"
}

// frameFile extracts the full path of a pkg/errors frame, which is only
// exposed through its "%+s" verb as "function\n\tpath".
func frameFile(f pkgerrors.Frame) string {
	s := fmt.Sprintf("%+s", f)

	if i := strings.LastIndex(s, "\n\t"); i >= 0 {
		return s[i+2:]
	}

	return s
}

var (
	// teamslogPackage is the import path of this package, determined at runtime.
	teamslogPackage = reflect.TypeOf(Field{}).PkgPath()

	loggingFramePrefixes = []string{
		"log/slog.",
		"github.com/sirupsen/logrus.",
		"go.uber.org/zap.",
		"go.uber.org/zap/zapcore.",
	}
)

// isLoggingFrame reports whether a frame belongs to this module or to a
// logging framework calling into it. Frames from test files are kept so that
// the recorded location points at the test itself.
func isLoggingFrame(frame runtime.Frame) bool {
	if strings.HasSuffix(frame.File, "_test.go") {
		return false
	}

	if strings.HasPrefix(frame.Function, teamslogPackage+".") ||
		strings.HasPrefix(frame.Function, teamslogPackage+"/") {
		return true
	}

	for _, p := range loggingFramePrefixes {
		if strings.HasPrefix(frame.Function, p) {
			return true
		}
	}

	return strings.HasPrefix(frame.Function, "runtime.")
}

// nilText is the fact text of a nil pointer, as printed by fmt.
const nilText = "<nil>"

// isNilPointer reports whether v holds a nil pointer. Methods called on such
// a value usually dereference it.
func isNilPointer(v interface{}) bool {
	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func panicText(r interface{}) string {
	return fmt.Sprintf("<PANIC=%v>", r)
}

// stringify renders an arbitrary context value as fact text.
// It never panics: methods of the value that panic yield the panic message.
func stringify(v interface{}) (s string) {
	if v == nil {
		return ""
	}

	if isNilPointer(v) {
		return nilText
	}

	defer func() {
		if r := recover(); r != nil {
			s = panicText(r)
		}
	}()

	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(b)
}
