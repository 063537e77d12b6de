// Package subscribeon binds the reactive containers returned by decorated calls
// to a scheduler. A call is annotated with a SubscribeOn strategy, either
// explicitly through Annotated or by name in a Registry; when the declared
// return type is an rx Observable or Single, the returned container is re-bound
// with SubscribeOn so its subscription work runs on the selected scheduler.
// Calls that are not annotated or return anything else pass through untouched.
package subscribeon
