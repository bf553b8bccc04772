package domain

// Annotation is the computed value for a key: a line count, possibly
// estimated from file size alone instead of read from content.
type Annotation struct {
	// Lines is the number of lines in the file.
	Lines int
	// Estimated is true when Lines was derived from the file size rather
	// than counted from content.
	Estimated bool
}

// Badge is the display-ready form of an annotation. It is a pure function
// of the annotation, memoized by the engine, and safe to rebuild if evicted.
type Badge struct {
	// Text is the short label shown next to the file.
	Text string
	// Tooltip is the longer description shown on hover.
	Tooltip string
}
