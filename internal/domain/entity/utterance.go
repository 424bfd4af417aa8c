package entity

import "strings"

// UtteranceRecord is one sentence-like unit of narration text, synthesized
// independently. Index is 1-based; AudioPath is assigned after synthesis.
type UtteranceRecord struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	AudioPath string `json:"audio_path,omitempty"`
}

// DefaultSentenceMarks are the sentence-final punctuation marks narration
// text is split on.
const DefaultSentenceMarks = "。？！…"

// SplitUtterances splits narration text into synthesizable utterances.
// Each mark in marks ends an utterance and stays attached to it; empty
// fragments are discarded; trailing text without a final mark is kept as
// the last utterance. Splitting an already-split utterance returns it
// unchanged, so the operation is idempotent.
func SplitUtterances(text string, marks string) []UtteranceRecord {
	if marks == "" {
		marks = DefaultSentenceMarks
	}

	var utterances []UtteranceRecord
	var cur strings.Builder
	flush := func() {
		s := strings.TrimSpace(cur.String())
		cur.Reset()
		if s == "" {
			return
		}
		utterances = append(utterances, UtteranceRecord{Index: len(utterances) + 1, Text: s})
	}

	for _, r := range text {
		cur.WriteRune(r)
		if strings.ContainsRune(marks, r) {
			flush()
		}
	}
	flush()

	return utterances
}
