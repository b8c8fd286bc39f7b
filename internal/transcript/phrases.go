// Package transcript turns time-stamped recognition output into editable
// phrases and step-sized segments.
package transcript

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"lukechampine.com/blake3"

	"github.com/erinovdaniil/onboarding/internal/timeutil"
)

// DefaultPauseThreshold is the silence, in seconds, that starts a new phrase.
const DefaultPauseThreshold = 0.25

// Phrase is a contiguous run of tokens edited as one unit.
type Phrase struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// GroupIntoPhrases coalesces tokens into phrases. When every token is a
// CleanedSegmentToken the tokens are mapped 1:1; otherwise a new phrase
// starts whenever the gap to the previous token reaches pauseThreshold.
// Regrouping always produces a full replacement list with fresh ids.
func GroupIntoPhrases(tokens []Token, pauseThreshold float64) []Phrase {
	if pauseThreshold <= 0 || !timeutil.IsFinite(pauseThreshold) {
		pauseThreshold = DefaultPauseThreshold
	}
	if len(tokens) == 0 {
		return []Phrase{}
	}
	if allCleaned(tokens) {
		return passthrough(tokens)
	}
	return groupByPause(tokens, pauseThreshold)
}

func allCleaned(tokens []Token) bool {
	for _, t := range tokens {
		if _, ok := t.(CleanedSegmentToken); !ok {
			return false
		}
	}
	return true
}

func passthrough(tokens []Token) []Phrase {
	out := make([]Phrase, 0, len(tokens))
	for _, t := range tokens {
		text, start, end := t.span()
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		out = append(out, Phrase{ID: phraseID(len(out)), Text: text, Start: start, End: end})
	}
	return out
}

func groupByPause(tokens []Token, threshold float64) []Phrase {
	out := make([]Phrase, 0)

	var (
		parts   []string
		start   float64
		lastEnd float64
	)
	flush := func() {
		text := strings.TrimSpace(strings.Join(parts, " "))
		if text != "" {
			out = append(out, Phrase{ID: phraseID(len(out)), Text: text, Start: start, End: lastEnd})
		}
		parts = parts[:0]
	}

	for _, t := range tokens {
		text, ts, te := t.span()
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if len(parts) > 0 && timeutil.ToMillis(ts)-timeutil.ToMillis(lastEnd) >= timeutil.ToMillis(threshold) {
			flush()
		}
		if len(parts) == 0 {
			start = ts
		}
		parts = append(parts, text)
		lastEnd = te
	}
	if len(parts) > 0 {
		flush()
	}
	return out
}

func phraseID(i int) string { return fmt.Sprintf("phrase-%d", i) }

// Digest identifies a phrase derivation by content, ignoring ids, so that two
// groupings of the same tokens share a digest.
func Digest(phrases []Phrase) string {
	h := blake3.New(16, nil)
	var buf [8]byte
	for _, p := range phrases {
		h.Write([]byte(p.Text))
		h.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Start))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.End))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
