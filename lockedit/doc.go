// Package lockedit implements an idempotent, line-oriented code merge engine.
//
// A generated file is loaded into a Buffer and its named lock regions are recovered from sentinel comments:
//
//	# LOCK-BEGIN[class(Point)]: DON'T MODIFY
//	...
//	# LOCK-END
//
// A generator then rewrites only the regions it owns, by name, with Editor.SetWithLock. Everything outside the
// regions it writes (hand-written methods, free text) is kept as loaded. Edits addressed by raw line ranges are
// refused when they would tear a region in half.
//
// An Editor is not safe for concurrent use. Separate editors share no state.
package lockedit
