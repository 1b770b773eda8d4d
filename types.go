package dockflow

import (
	"fmt"
	"reflect"
)

// TypeOf returns the dock type for T. It returns nil for any, which marks
// a polymorphic dock.
func TypeOf[T any]() reflect.Type {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if isAnyType(t) {
		return nil
	}
	return t
}

// TypeName returns a printable name for a dock type.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	return t.String()
}

// isAnyType checks if a reflect.Type represents the 'any' interface.
func isAnyType(t reflect.Type) bool {
	if t == nil {
		return true
	}
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

// Compatible reports whether a source of type src may feed a sink of type
// sink. A nil type on either side is polymorphic and matches everything.
func Compatible(src, sink reflect.Type) bool {
	if src == nil || sink == nil {
		return true
	}
	return isTypeCompatible(src, sink)
}

// isTypeCompatible checks if output type can be used as input type.
// This handles interface satisfaction and type identity.
func isTypeCompatible(outputType, inputType reflect.Type) bool {
	if outputType == inputType {
		return true
	}

	if inputType.Kind() == reflect.Interface {
		return outputType.Implements(inputType)
	}

	return outputType.AssignableTo(inputType)
}

// checkValue verifies that v can be stored in a dock of type t.
func checkValue(t reflect.Type, v any) error {
	if t == nil || v == nil {
		return nil
	}
	if !isTypeCompatible(reflect.TypeOf(v), t) {
		return fmt.Errorf("%w: expected %v, got %T", ErrTypeMismatch, t, v)
	}
	return nil
}
