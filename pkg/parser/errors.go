package parser

import "github.com/cockroachdb/errors"

var (
	// ErrNoCommentaryBlocks means a commentary page rendered no commentary blocks at all
	ErrNoCommentaryBlocks = errors.New("no commentary blocks found")
	// ErrNoScorecardTables means a scorecard page rendered no batting tables at all
	ErrNoScorecardTables = errors.New("no scorecard tables found")
	// ErrStructuralMismatch means normalized commentary rows have a width no schema maps
	ErrStructuralMismatch = errors.New("unsupported commentary column width")
	// ErrNoInnings means the innings selector or its dropdown could not be read
	ErrNoInnings = errors.New("no innings found")
)
