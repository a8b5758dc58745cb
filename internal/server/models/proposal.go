package models

import (
	"strings"
	"time"
)

// Answer is the recipient's reply. The zero value means unanswered.
type Answer string

const (
	AnswerNone Answer = ""
	AnswerYes  Answer = "YES"
	AnswerNo   Answer = "NO"
)

// ParseAnswer canonicalizes raw input ("yes", " No ") to AnswerYes or
// AnswerNo. ok is false for anything else.
func ParseAnswer(raw string) (Answer, bool) {
	switch a := Answer(strings.ToUpper(strings.TrimSpace(raw))); a {
	case AnswerYes, AnswerNo:
		return a, true
	default:
		return AnswerNone, false
	}
}

// Proposal is the one-shot question a user shares through its token.
// Response moves from AnswerNone to YES or NO once; RespondedAt is set
// exactly when Response is.
type Proposal struct {
	ID            string
	OwnerID       string
	Token         string
	ShareableLink string
	Response      Answer
	CreatedAt     time.Time
	RespondedAt   *time.Time
}

// Answered reports whether the proposal already has a response.
func (p *Proposal) Answered() bool {
	return p.Response != AnswerNone
}
