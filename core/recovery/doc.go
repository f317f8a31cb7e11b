// Package recovery turns raw LLM text into a field mapping. Models wrap JSON
// in prose or code fences, cut it off at the token limit, or drop it
// entirely, so this package runs an ordered chain of fallible stages, each
// returning a tagged [Result]:
//
//  1. [Extract]: strict parse of the first '{' … last '}' span of the
//     normalized text.
//  2. [Repair]: close strings, add missing commas and closing braces left by
//     truncation, then parse again.
//  3. [FindObject]: first balanced '{...}' span anywhere in the text that
//     parses.
//  4. [LibraryRepair]: general repair through github.com/kaptinlin/jsonrepair.
//  5. [Scavenge]: per-field regular expressions. Never fails.
//
// [Chain] wires the stages together and reports every stage outcome to the
// registered hooks.
package recovery
