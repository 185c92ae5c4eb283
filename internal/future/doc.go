// Package future provides Future, a single-assignment deferred result.
//
// A Future is in exactly one of three states: Pending, Resolved (holding a
// value) or Failed (holding an error). The transition out of Pending happens
// once and is final. Settling a Future a second time is a defect and panics
// with an apperr.Error of kind CONTRACT_VIOLATION.
//
// Continuations registered with OnSuccess and OnFailure run on whichever
// goroutine settles the Future, in registration order. Registering on an
// already settled Future runs the matching continuation immediately on the
// caller's goroutine. The package never starts goroutines of its own except
// in Async, which exists for collaborators that perform blocking I/O.
//
// Map, FlatMap and AndThen build new Futures without blocking. Detach consumes
// a Future whose outcome must not flow back into the caller's chain, which is
// how write-behind calls are issued. Await is the only blocking operation and
// is meant for outermost boundaries such as HTTP handlers and the CLI.
//
// A Future that is never settled never fires its continuations. There is no
// timeout at this layer; callers bound waiting through the context they pass
// to Await.
package future
