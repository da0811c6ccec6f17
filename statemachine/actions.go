package statemachine

import (
	"fmt"
	"reflect"
)

// actionHandler is one registered callback. Exactly one of zero or typed
// is set; argType is nil for zero-argument handlers.
type actionHandler struct {
	argType reflect.Type
	zero    func() error
	typed   func(data any) error
}

// ActionStorage maps action triggers to ordered lists of typed handlers.
// The zero value is ready to use; the underlying map is allocated on the
// first AddAction call.
type ActionStorage[TEvent comparable] struct {
	handlers map[TEvent][]actionHandler
}

// NewActionStorage creates an empty action registry.
func NewActionStorage[TEvent comparable]() *ActionStorage[TEvent] {
	return &ActionStorage[TEvent]{}
}

// AddAction appends a zero-argument handler for trigger. Multiple handlers
// per trigger are allowed and run in registration order.
func (s *ActionStorage[TEvent]) AddAction(trigger TEvent, handler func() error) {
	if s.handlers == nil {
		s.handlers = make(map[TEvent][]actionHandler)
	}

	s.handlers[trigger] = append(s.handlers[trigger], actionHandler{zero: handler})
}

// AddActionWithArg appends a handler for trigger that expects a single
// argument of type TData. Dispatching the trigger with any other argument
// type fails with ErrActionTypeMismatch.
func AddActionWithArg[TEvent comparable, TData any](
	s *ActionStorage[TEvent], trigger TEvent, handler func(TData) error,
) {
	if s.handlers == nil {
		s.handlers = make(map[TEvent][]actionHandler)
	}

	s.handlers[trigger] = append(s.handlers[trigger], actionHandler{
		argType: reflect.TypeOf((*TData)(nil)).Elem(),
		typed: func(data any) error {
			if data == nil {
				var zero TData

				return handler(zero)
			}

			return handler(data.(TData)) //nolint:forcetypeassert // caller checked assignability
		},
	})
}

// RunAction runs every zero-argument handler registered for trigger in
// registration order. A handler under the same trigger that expects an
// argument is a type mismatch, not a skip. An unregistered trigger is a
// no-op.
func (s *ActionStorage[TEvent]) RunAction(trigger TEvent) error {
	for _, handler := range s.handlers[trigger] {
		if handler.argType != nil {
			return fmt.Errorf("%w: trigger %v: handler expects %s, dispatched without data",
				ErrActionTypeMismatch, trigger, handler.argType)
		}

		err := handler.zero()
		if err != nil {
			return err
		}
	}

	return nil
}

// RunActionWithData runs every handler registered for trigger whose
// expected argument type data is assignable to, in registration order. A
// handler registered under the same trigger for an incompatible type is a
// type mismatch; nil data is accepted by handlers whose argument type can
// hold nil. An unregistered trigger is a no-op.
func (s *ActionStorage[TEvent]) RunActionWithData(trigger TEvent, data any) error {
	dataType := reflect.TypeOf(data)

	for _, handler := range s.handlers[trigger] {
		if handler.argType == nil {
			return fmt.Errorf("%w: trigger %v: handler expects no argument, dispatched with %v",
				ErrActionTypeMismatch, trigger, dataType)
		}

		if dataType == nil {
			if !nilAssignable(handler.argType) {
				return fmt.Errorf("%w: trigger %v: handler expects %s, got nil",
					ErrActionTypeMismatch, trigger, handler.argType)
			}
		} else if !dataType.AssignableTo(handler.argType) {
			return fmt.Errorf("%w: trigger %v: handler expects %s, got %v",
				ErrActionTypeMismatch, trigger, handler.argType, dataType)
		}

		err := handler.typed(data)
		if err != nil {
			return err
		}
	}

	return nil
}

// nilAssignable reports whether t's zero value can represent nil.
func nilAssignable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

// Len returns the number of handlers registered for trigger.
func (s *ActionStorage[TEvent]) Len(trigger TEvent) int {
	return len(s.handlers[trigger])
}
