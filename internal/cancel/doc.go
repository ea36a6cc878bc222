// Package cancel adapts host cancellation tokens into context cancellation.
//
// A [Token] is the one-directional signal a host hands to an operation (a
// progress dialog's cancel button, Ctrl+C in a spinner). [Bridge] turns it
// into a [context.Context] that every suspending call of the operation is
// bound to. [Source] is the host-side token implementation.
package cancel
