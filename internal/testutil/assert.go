package testutil

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/agentstation/dockflow"
)

// Assert provides test assertions.
type Assert struct {
	t *testing.T
}

// NewAssert creates a new assert helper.
func NewAssert(t *testing.T) *Assert {
	return &Assert{t: t}
}

// Equal asserts that two values are equal.
func (a *Assert) Equal(expected, actual any, msgAndArgs ...any) {
	a.t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		a.fail(fmt.Sprintf("Expected: %v\nActual: %v", expected, actual), msgAndArgs...)
	}
}

// NotNil asserts that a value is not nil.
func (a *Assert) NotNil(value any, msgAndArgs ...any) {
	a.t.Helper()
	if isNil(value) {
		a.fail("Expected non-nil value, but got nil", msgAndArgs...)
	}
}

// True asserts that a value is true.
func (a *Assert) True(value bool, msgAndArgs ...any) {
	a.t.Helper()
	if !value {
		a.fail("Expected true, but got false", msgAndArgs...)
	}
}

// False asserts that a value is false.
func (a *Assert) False(value bool, msgAndArgs ...any) {
	a.t.Helper()
	if value {
		a.fail("Expected false, but got true", msgAndArgs...)
	}
}

// Error asserts that an error occurred.
func (a *Assert) Error(err error, msgAndArgs ...any) {
	a.t.Helper()
	if err == nil {
		a.fail("Expected error, but got nil", msgAndArgs...)
	}
}

// NoError asserts that no error occurred.
func (a *Assert) NoError(err error, msgAndArgs ...any) {
	a.t.Helper()
	if err != nil {
		a.fail(fmt.Sprintf("Expected no error, but got: %v", err), msgAndArgs...)
	}
}

// ErrorIs asserts that err matches target.
func (a *Assert) ErrorIs(err, target error, msgAndArgs ...any) {
	a.t.Helper()
	if !errors.Is(err, target) {
		a.fail(fmt.Sprintf("Expected error %v, but got: %v", target, err), msgAndArgs...)
	}
}

// Contains asserts that a string contains a substring.
func (a *Assert) Contains(s, substr string, msgAndArgs ...any) {
	a.t.Helper()
	if !strings.Contains(s, substr) {
		a.fail(fmt.Sprintf("Expected %q to contain %q", s, substr), msgAndArgs...)
	}
}

// Len asserts the length of a collection.
func (a *Assert) Len(collection any, length int, msgAndArgs ...any) {
	a.t.Helper()
	actual := getLen(collection)
	if actual != length {
		a.fail(fmt.Sprintf("Expected length %d, but got %d", length, actual), msgAndArgs...)
	}
}

// Empty asserts that a collection is empty.
func (a *Assert) Empty(collection any, msgAndArgs ...any) {
	a.t.Helper()
	if getLen(collection) != 0 {
		a.fail(fmt.Sprintf("Expected empty collection, but got length %d", getLen(collection)), msgAndArgs...)
	}
}

// NotEmpty asserts that a collection is not empty.
func (a *Assert) NotEmpty(collection any, msgAndArgs ...any) {
	a.t.Helper()
	if getLen(collection) == 0 {
		a.fail("Expected non-empty collection, but got empty", msgAndArgs...)
	}
}

// Helper functions

func (a *Assert) fail(message string, msgAndArgs ...any) {
	if len(msgAndArgs) > 0 {
		if format, ok := msgAndArgs[0].(string); ok && len(msgAndArgs) > 1 {
			message = fmt.Sprintf(format, msgAndArgs[1:]...) + "\n" + message
		} else if len(msgAndArgs) == 1 {
			message = fmt.Sprintf("%v\n%s", msgAndArgs[0], message)
		}
	}
	a.t.Fatal(message)
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}

	return false
}

func getLen(value any) int {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Array, reflect.Chan, reflect.Map, reflect.Slice, reflect.String:
		return v.Len()
	default:
		panic(fmt.Sprintf("Cannot get length of type %T", value))
	}
}

// DockAssert provides dock-specific assertions.
type DockAssert struct {
	*Assert
}

// NewDockAssert creates dock-specific assertions.
func NewDockAssert(t *testing.T) *DockAssert {
	return &DockAssert{
		Assert: NewAssert(t),
	}
}

// Holds asserts that src is valid and holds want.
func (da *DockAssert) Holds(src *dockflow.Source, want any) {
	da.t.Helper()

	v, ok := src.Value()
	da.True(ok, "Expected %s to hold %v, but it has no value", src.Path(), want)
	da.Equal(want, v, "Unexpected value in %s", src.Path())
}

// Invalid asserts that src has no value.
func (da *DockAssert) Invalid(src *dockflow.Source) {
	da.t.Helper()

	v, ok := src.Value()
	da.False(ok, "Expected %s to have no value, but it holds %v", src.Path(), v)
}

// Sees asserts that the first source of sink delivers want.
func (da *DockAssert) Sees(sink *dockflow.Sink, want any) {
	da.t.Helper()

	v, ok := sink.Value()
	da.True(ok, "Expected %s to see %v, but it has no value", sink.Path(), want)
	da.Equal(want, v, "Unexpected value in %s", sink.Path())
}

// Connected asserts that src feeds sink.
func (da *DockAssert) Connected(src *dockflow.Source, sink *dockflow.Sink) {
	da.t.Helper()

	for _, s := range src.Sinks() {
		if s == sink {
			return
		}
	}
	da.fail(fmt.Sprintf("Expected %s -> %s to be connected", src.Path(), sink.Path()))
}
