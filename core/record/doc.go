// Package record assembles the final, fully populated record from whatever
// mapping the recovery chain produced. Every field declared by a [Schema] is
// present in the result: either the extracted value, when it matches the
// declared [Kind], or a copy of the field's default. Each value carries a
// [Source] so callers can tell real content from fallback content.
//
// Identifier and timestamp generation are the only impure parts of assembly
// and are injected through [WithIDSource] and [WithClock].
package record
