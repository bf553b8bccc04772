package annotate

// Test-only exports.
var (
	CountLines        = countLines
	CountWithDeadline = countWithDeadline
)
