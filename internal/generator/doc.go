// Package generator runs generation passes: it walks the source tree, parses
// and renders every content unit, mirrors other files, and, once every write
// has settled, produces the site map and the configured copies.
//
// All pass state lives in a GenerationContext created per pass. Passes are
// serialized on a single event loop and gated by a completion barrier, so a
// Generate call that arrives while an earlier pass is still writing waits for
// that pass to settle instead of interleaving output.
package generator
