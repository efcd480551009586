package types

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered learner.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// OnboardingAnswer is a single question/answer pair from the onboarding flow.
type OnboardingAnswer struct {
	QuestionID   string `json:"question_id" validate:"required"`
	QuestionText string `json:"question_text"`
	Answer       string `json:"answer"`
}

// AnswerSubmission is one stored set of onboarding answers.
type AnswerSubmission struct {
	ID          string             `json:"submission_id"`
	UserID      uuid.UUID          `json:"user_id"`
	Email       string             `json:"email"`
	Answers     []OnboardingAnswer `json:"answers"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

// CreateUserRequest represents the request to register a learner.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateUserRequest replaces a learner's name and email.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1"`
	Email string `json:"email" validate:"required,email"`
}

// AnswerHistory lists every submission of a user, newest first.
type AnswerHistory struct {
	UserID           uuid.UUID          `json:"user_id"`
	Email            string             `json:"email"`
	Submissions      []AnswerSubmission `json:"submissions"`
	TotalSubmissions int                `json:"total_submissions"`
}

// SubmitAnswersRequest represents an onboarding answer submission.
type SubmitAnswersRequest struct {
	Email   string             `json:"email" validate:"required,email"`
	Answers []OnboardingAnswer `json:"answers" validate:"required,min=1,dive"`
}
