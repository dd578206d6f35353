package services

import (
	"strings"

	"github.com/Vijayy-ai/EduTube/internal/models"
)

// The model output contract is line-oriented: numbered question headers
// followed by lettered option lines, with "(correct)" marking the answer.
// Anything else is noise and skipped. Parsing is a tokenizer over lines plus
// a small state machine that accumulates one question at a time.

type tokenKind int

const (
	tokenNoise tokenKind = iota
	tokenQuestion
	tokenOption
)

// lineToken is one classified line of model output
type lineToken struct {
	kind tokenKind
	// text is the question text or option text, marker stripped
	text string
	// correct is set on option tokens carrying the (correct) marker
	correct bool
}

const correctMarker = "(correct)"

// tokenizeLine classifies a single trimmed line of model output.
//
// A question header starts with a digit and has a '.' within its first three
// characters; the text is everything after the first '.'. An option line
// starts with A-D followed by ')' or '.'; the text starts at the third
// character. Everything else is noise.
func tokenizeLine(line string) lineToken {
	line = strings.TrimSpace(line)
	if line == "" {
		return lineToken{kind: tokenNoise}
	}

	if line[0] >= '0' && line[0] <= '9' {
		dot := strings.IndexByte(line, '.')
		if dot >= 0 && dot < 3 {
			return lineToken{
				kind: tokenQuestion,
				text: strings.TrimSpace(line[dot+1:]),
			}
		}
		return lineToken{kind: tokenNoise}
	}

	if len(line) >= 2 && line[0] >= 'A' && line[0] <= 'D' && (line[1] == ')' || line[1] == '.') {
		text := strings.TrimSpace(line[2:])
		text, correct := stripCorrectMarker(text)
		return lineToken{
			kind:    tokenOption,
			text:    text,
			correct: correct,
		}
	}

	return lineToken{kind: tokenNoise}
}

// stripCorrectMarker removes every case-insensitive (correct) marker from
// option text and reports whether at least one was present. Leftover doubled
// whitespace is collapsed so no marker residue reaches stored option text.
func stripCorrectMarker(text string) (string, bool) {
	found := false
	for {
		idx := strings.Index(strings.ToLower(text), correctMarker)
		if idx < 0 {
			break
		}
		text = text[:idx] + text[idx+len(correctMarker):]
		found = true
	}
	if found {
		text = strings.Join(strings.Fields(text), " ")
	}
	return strings.TrimSpace(text), found
}

// parserState accumulates questions as tokens arrive
type parserState struct {
	current   *models.GeneratedQuestion
	questions []models.GeneratedQuestion
}

func (p *parserState) startQuestion(text string, difficulty models.Difficulty) {
	p.flush()
	p.current = &models.GeneratedQuestion{
		Text:         text,
		CorrectIndex: -1,
		Difficulty:   difficulty,
	}
}

func (p *parserState) addOption(text string, correct bool) {
	// Options before any question header are noise
	if p.current == nil {
		return
	}
	p.current.Options = append(p.current.Options, text)
	if correct {
		p.current.CorrectIndex = len(p.current.Options) - 1
	}
}

func (p *parserState) flush() {
	if p.current == nil {
		return
	}
	if p.current.Text != "" && len(p.current.Options) > 0 {
		p.questions = append(p.questions, *p.current)
	}
	p.current = nil
}

// ParseQuizResponse parses raw model output into generated questions tagged
// with the given difficulty. Malformed lines are skipped; structural
// validation (exactly four options, at least one correct) happens in the
// assembler.
func ParseQuizResponse(raw string, difficulty models.Difficulty) []models.GeneratedQuestion {
	state := &parserState{}

	for _, line := range strings.Split(raw, "\n") {
		token := tokenizeLine(line)
		switch token.kind {
		case tokenQuestion:
			state.startQuestion(token.text, difficulty)
		case tokenOption:
			state.addOption(token.text, token.correct)
		case tokenNoise:
			// skipped
		}
	}
	state.flush()

	return state.questions
}
