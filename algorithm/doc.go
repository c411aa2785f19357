// Package algorithm is the composition framework indicators are built on.
//
// An Algorithm is a named computation with an immutable, validated parameter
// set. Its Compute must be pure: the result may depend only on the input
// series and the parameters.
//
// That purity is what makes Invoke safe:
//
//	→ the first evaluation of (algorithm, params) on a series computes and stores
//	→ every later evaluation on the same series is served from its cache
//
// Indicators compose by invoking sub-algorithms on the series they were given.
// Two indicators depending on the same first differences or the same peak
// detection therefore pay for it once per series, even when they never see
// each other.
//
// Features:
//   - Descriptor / Resolve: typed parameter declarations with defaults,
//     validation and a defaults < caller < overrides precedence.
//   - Base: the abstract root concrete algorithms embed.
//   - Evaluate / Invoke / Get: cached or direct evaluation.
//   - CacheHash: a deterministic key folding in the algorithm's Go type.
//
// WARNING: Do not invoke impure computations (randomness, clocks, I/O) through
// this package. A cached result is returned as-is for the lifetime of the series.
package algorithm
