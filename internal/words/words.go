// apps/solver-server/internal/words/words.go
//
// Loads the guess corpus and the answer corpus.
//
// Responsibilities:
//   - Parse newline-separated word lists into canonical solver.Words.
//   - Skip blank lines and '#' comments; skip and count malformed tokens
//     instead of failing the load.
//   - Resolve the lists from environment-provided files or fall back to the
//     embedded defaults in the assets package.
//
// Initialization behavior (Open):
//   1. If both an answers path and an allowed path are set,
//      load answers from the first and allowed guesses from the second.
//   2. If only the allowed path is set,
//      use that list for both answers and guesses.
//   3. If neither is set, use the embedded lists.
//
// Environment variables (read by the config package):
//   WORDS_ANSWERS_FILE=/path/to/answers.txt
//   WORDS_ALLOWED_FILE=/path/to/allowed.txt

package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solver-server/assets"
	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
)

// ErrCorpusLoad wraps any failure to open or read a word list.
var ErrCorpusLoad = errors.New("corpus load failed")

// LoadStats summarises one list load.
type LoadStats struct {
	Kept       int `json:"kept"`
	Skipped    int `json:"skipped"`    // malformed tokens
	Duplicates int `json:"duplicates"` // repeated words, first occurrence kept
}

// Load reads one word per line from r.
// Tokens are trimmed and lowercased; blank lines and comments are ignored.
func Load(r io.Reader) ([]solver.Word, LoadStats, error) {
	var (
		out   []solver.Word
		stats LoadStats
		seen  = make(map[solver.Word]struct{})
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		w, err := solver.ParseWord(line)
		if err != nil {
			stats.Skipped++
			continue
		}
		if _, dup := seen[w]; dup {
			stats.Duplicates++
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrCorpusLoad, err)
	}
	stats.Kept = len(out)
	return out, stats, nil
}

// LoadFile loads a word list from path.
func LoadFile(path string) ([]solver.Word, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("%w: %v", ErrCorpusLoad, err)
	}
	defer f.Close()
	return load(path, f)
}

func loadEmbedded(open func() (io.ReadCloser, error), name string) ([]solver.Word, LoadStats, error) {
	f, err := open()
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("%w: embedded %s: %v", ErrCorpusLoad, name, err)
	}
	defer f.Close()
	return load("embedded:"+name, f)
}

// load wraps Load with a log line naming the source.
func load(source string, r io.Reader) ([]solver.Word, LoadStats, error) {
	list, stats, err := Load(r)
	if err != nil {
		return nil, stats, err
	}
	ev := log.Info()
	if stats.Skipped > 0 {
		ev = log.Warn()
	}
	ev.Str("source", source).
		Int("kept", stats.Kept).
		Int("skipped", stats.Skipped).
		Int("duplicates", stats.Duplicates).
		Msg("word list loaded")
	return list, stats, nil
}

// Open resolves and loads both lists. Empty paths select the fallbacks
// described in the file header.
func Open(answersPath, allowedPath string) (*Corpus, error) {
	var ansList, allowList []solver.Word
	var err error

	switch {
	case answersPath != "" && allowedPath != "":
		if ansList, _, err = LoadFile(answersPath); err != nil {
			return nil, err
		}
		if allowList, _, err = LoadFile(allowedPath); err != nil {
			return nil, err
		}

	case allowedPath != "":
		if allowList, _, err = LoadFile(allowedPath); err != nil {
			return nil, err
		}
		ansList = allowList

	default:
		if ansList, _, err = loadEmbedded(assets.Answers, assets.AnswersFile); err != nil {
			return nil, err
		}
		if allowList, _, err = loadEmbedded(assets.Allowed, assets.AllowedFile); err != nil {
			return nil, err
		}
	}

	if len(ansList) == 0 {
		return nil, fmt.Errorf("%w: answers list is empty", ErrCorpusLoad)
	}
	return NewCorpus(allowList, ansList), nil
}

var (
	initOnce   sync.Once
	defaultC   *Corpus
	initialErr error
)

// Init loads the process-wide corpus exactly once.
func Init(answersPath, allowedPath string) error {
	initOnce.Do(func() {
		defaultC, initialErr = Open(answersPath, allowedPath)
	})
	return initialErr
}

// Default returns the corpus loaded by Init, or nil before Init succeeds.
func Default() *Corpus {
	return defaultC
}
