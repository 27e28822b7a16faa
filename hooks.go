package skiplist

// Test hooks (kept separate so instrumentation doesn't clutter logic).
// They run on the writer goroutine inside the splice window and must not
// mutate the list.
var (
	// beforePublishHook is invoked after a new atomic node has been fully
	// initialized but before the store that links it into its level.
	beforePublishHook func()
)
