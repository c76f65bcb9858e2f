// Package textgrid reads and writes Praat TextGrid files in the long
// (verbose key = value) form. Interval tiers map onto timeline interval
// tiers; TextTier point tiers map onto timeline point tiers. Quoted values
// follow Praat's conventions: embedded quotes are doubled and text may run
// across lines.
package textgrid
