package retentionkeeper

import (
	"bufio"
	"io"
	"strings"
	"time"
)

// ParseConversation reads the `<Speaker>: <text>` line format. Blank
// lines are skipped; a line with no recognizable "speaker: text" shape is
// reported as an InputMalformedErr but never aborts the parse — the caller
// decides whether to surface the errors.
func ParseConversation(r io.Reader) ([]Utterance, []error) {
	var utterances []Utterance
	var errs []error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	turn := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		speaker, text, ok := splitSpeakerLine(line)
		if !ok {
			errs = append(errs, &InputMalformedErr{Line: line})
			continue
		}

		utterances = append(utterances, Utterance{
			TurnIndex: turn,
			Speaker:   speaker,
			Text:      text,
			Timestamp: time.Time{}, // stamped by the caller if wall-clock time matters
		})
		turn++
	}

	return utterances, errs
}

func splitSpeakerLine(line string) (speaker, text string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 || idx == len(line)-1 {
		return "", "", false
	}
	speaker = strings.TrimSpace(line[:idx])
	text = strings.TrimSpace(line[idx+1:])
	if speaker == "" || text == "" {
		return "", "", false
	}
	if strings.ContainsAny(speaker, " \t") {
		return "", "", false // speaker labels are a single token, e.g. "User", "Assistant"
	}
	return speaker, text, true
}
