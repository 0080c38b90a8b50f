package types

// EmitFunc is the capability handed to user map and reduce functions
// allowing them to produce key-value output during a single invocation.
// It is only valid for the duration of that invocation.
type EmitFunc func(key, value string)

// MapFunc is a user-defined map function. It is called once per input
// line and may call emit any number of times.
// It MUST be defined in a shared package imported by both the core and
// the packages providing job implementations to avoid type mismatches.
type MapFunc func(lineIdx int, line string, emit EmitFunc)

// ReduceFunc is a user-defined reduce function. It is called once per
// distinct key with every value emitted for that key, and may call emit
// any number of times; for a given emitted key, the last call wins.
type ReduceFunc func(key string, values []string, emit EmitFunc)
