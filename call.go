/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitybind

import (
	"fmt"
)

// Call is what a handler sees of one invocation.
type Call struct {
	function string
	payload  any
	values   map[string]any
}

// Function returns the invoked function name.
func (c *Call) Function() string {
	return c.function
}

// Payload returns the trigger payload.
func (c *Call) Payload() any {
	return c.payload
}

// Value returns the bound value of a parameter, or nil when there is no such parameter.
// Output parameters are pointer slots; collectors are returned as they are.
func (c *Call) Value(name string) any {
	return c.values[name]
}

// Value returns the bound value of a parameter as a T.
//
//	doc, err := entitybind.Value[storagemodels.Document](call, "item")
//	out, err := entitybind.Value[*[]storagemodels.Document](call, "results")
func Value[T any](c *Call, name string) (T, error) {
	var zero T
	v, ok := c.values[name]
	if !ok {
		return zero, fmt.Errorf("function %q has no parameter %q", c.function, name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("parameter %q is %T, not %T", name, v, zero)
	}
	return t, nil
}
