// Package errors provides the structured error and warning system for the
// life-expectancy pipeline. It is inspired by scikit-learn's warning/exception
// hierarchy: fatal contract violations surface as typed errors with stack
// traces, recoverable conditions are routed through a global warning handler.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to stderr.
		log.Printf("lifeexp-Warning: %v\n", w)
	}
	// zerolog warn func, injected lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the process-wide warning handler. Use it to silence
// or redirect non-fatal warnings such as UnseenCategoryWarning.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // ignore warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc injects the zerolog warning sink (avoids import cycle).
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a non-fatal warning. When a zerolog sink is installed the
// warning is logged structurally, otherwise it goes to the plain handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Pipeline warning types
//
// ===========================================================================

// UnseenCategoryWarning is emitted when a category key (country) appears in
// validation or test data but was never observed while fitting the imputer.
// The row is filled with the global fallback statistic; the run continues.
type UnseenCategoryWarning struct {
	Column   string
	Key      string
	Fallback float64
}

func (w *UnseenCategoryWarning) Error() string {
	return fmt.Sprintf("category %q was not seen during fit for column %q; falling back to global statistic %g",
		w.Key, w.Column, w.Fallback)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *UnseenCategoryWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Str("key", w.Key).
		Float64("fallback", w.Fallback).
		Str("type", "UnseenCategoryWarning")
}

// NewUnseenCategoryWarning creates a new UnseenCategoryWarning.
func NewUnseenCategoryWarning(column, key string, fallback float64) *UnseenCategoryWarning {
	return &UnseenCategoryWarning{Column: column, Key: key, Fallback: fallback}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// SchemaError reports a fatal schema violation: a required column is missing
// from an input dataset, the column sets of two partitions diverge, or a
// categorical column carries a value outside its fixed mapping.
type SchemaError struct {
	Stage  string // pipeline stage or operation where the mismatch was found
	Column string // offending column, empty for whole-schema mismatches
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("lifeexp: %s: schema violation on column %q: %s", e.Stage, e.Column, e.Detail)
	}
	return fmt.Sprintf("lifeexp: %s: schema violation: %s", e.Stage, e.Detail)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *SchemaError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", e.Stage).
		Str("column", e.Column).
		Str("detail", e.Detail).
		Str("type", "SchemaError")
}

// NewSchemaError creates a new SchemaError with a stack trace attached.
func NewSchemaError(stage, column, detail string) error {
	err := &SchemaError{Stage: stage, Column: column, Detail: detail}
	return errors.WithStack(err)
}

// UndefinedValueError reports a fatal contract violation: a value is still
// undefined (NaN) immediately before a stage that requires fully defined
// numeric input. Imputation or feature synthesis failed to resolve it.
type UndefinedValueError struct {
	Stage  string
	Column string
	Rows   int // number of rows still undefined in the column
}

func (e *UndefinedValueError) Error() string {
	return fmt.Sprintf("lifeexp: %s: column %q still has %d undefined value(s) after imputation/synthesis",
		e.Stage, e.Column, e.Rows)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *UndefinedValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", e.Stage).
		Str("column", e.Column).
		Int("rows", e.Rows).
		Str("type", "UndefinedValueError")
}

// NewUndefinedValueError creates a new UndefinedValueError with a stack trace.
func NewUndefinedValueError(stage, column string, rows int) error {
	err := &UndefinedValueError{Stage: stage, Column: column, Rows: rows}
	return errors.WithStack(err)
}

// NotFittedError is returned when Transform or Predict is called before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("lifeexp: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a new NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports an input whose dimensions differ from what the
// fitted estimator expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("lifeexp: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is invalid for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("lifeexp: %s: %s", e.Op, e.Message)
}

// NewValueError creates a new ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a general estimator error.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lifeexp: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("lifeexp: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a new ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an operation receives an empty dataset.
	ErrEmptyData = New("empty data")
)
