// apps/solver-server/assets/embed.go
//
// Embedded default word lists, used when no corpus files are configured.
//   - answers.txt: possible secrets (the initial candidate pool).
//   - allowed.txt: additional legal guesses; answers are merged in by the
//     words package.
// Lines starting with '#' are comments.

package assets

import (
	"embed"
	"io"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

const (
	AnswersFile = "answers.txt"
	AllowedFile = "allowed.txt"
)

// Answers opens the embedded answer list.
func Answers() (io.ReadCloser, error) {
	return FS.Open(AnswersFile)
}

// Allowed opens the embedded guess list.
func Allowed() (io.ReadCloser, error) {
	return FS.Open(AllowedFile)
}
