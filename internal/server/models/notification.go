package models

import "time"

// Notification is the in-app notice an owner receives when their proposal
// gets answered.
type Notification struct {
	ID         string
	UserID     string
	ProposalID string
	Message    string
	CreatedAt  time.Time
}

// NotificationMessage is the text shown to the owner for answer.
func NotificationMessage(answer Answer) string {
	if answer == AnswerYes {
		return "Congratulations!! I am so, so happy for you! You totally deserve this."
	}
	return "It's okay to feel disappointed/sad/angry. Take all the time you need to process it."
}
