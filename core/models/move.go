package models

// FileMove records one file that changed path during a move.
type FileMove struct {
	From string
	To   string
}

// ImportRewrite records one module specifier that was rewritten.
type ImportRewrite struct {
	FilePath string // Path of the importing file after the move
	From     string
	To       string
}

type MoveReport struct {
	FromBase string
	ToBase   string
	Moved    []FileMove
	Rewrites []ImportRewrite
}

// Empty reports whether the move changed nothing.
func (r *MoveReport) Empty() bool {
	return r == nil || (len(r.Moved) == 0 && len(r.Rewrites) == 0)
}
