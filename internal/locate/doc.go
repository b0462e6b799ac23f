// Package locate finds elements in a UI whose structure is unversioned and can change at any time.
//
// A conceptual target ("playlist row", "save button") is described by an ordered list of
// [Strategy] values. [First] tries them in order and returns the results of the first one that
// matches anything; later strategies are never attempted. Nothing matching is a normal outcome
// reported through [Result.Found], never an error.
//
// The same ordering rule is applied to actions by [Cascade], where a declarative action and its
// scripted fallback share a post-condition, and to multi-step extractions by [FirstYield].
//
// [Scroller] forces lazily rendered lists to materialize before extraction.
package locate
