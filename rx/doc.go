// Package rx is a small reactive library: Observable and Single containers whose
// subscription work can be moved onto a Scheduler with SubscribeOn. Five
// schedulers are provided (immediate, trampoline, new-thread, computation and
// io), each tagging the context handed to scheduled work with its name so
// callers can observe where work actually ran.
package rx
