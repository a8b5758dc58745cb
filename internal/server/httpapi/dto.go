package httpapi

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
		validation.Field(&r.Name, validation.Length(0, 100)),
	)
}

type registerResponse struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type loginResponse struct {
	Email   string `json:"email"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// respondRequest is not validated up front: an unknown or answered
// proposal must be reported before a bad answer.
type respondRequest struct {
	Response string `json:"response"`
}

type respondResponse struct {
	Message      string `json:"message"`
	Status       string `json:"status"`
	Response     string `json:"response"`
	Notification string `json:"notification"`
}

type proposalResponse struct {
	ProposalID    string     `json:"proposalId"`
	Token         string     `json:"token"`
	ShareableLink string     `json:"shareableLink"`
	CreatedAt     time.Time  `json:"createdAt"`
	Response      *string    `json:"response,omitempty"`
	AnsweredAt    *time.Time `json:"answeredAt,omitempty"`
	Message       string     `json:"message,omitempty"`
}

type statusResponse struct {
	ProposalID   string     `json:"proposalId"`
	Answered     bool       `json:"answered"`
	Response     *string    `json:"response"`
	Notification *string    `json:"notification"`
	AnsweredAt   *time.Time `json:"answeredAt"`
}

type notificationResponse struct {
	ID         string    `json:"id"`
	ProposalID string    `json:"proposalId"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

type notificationsResponse struct {
	Notifications []notificationResponse `json:"notifications"`
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Storage string `json:"storage"`
}
