package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxFieldBytes caps the byte length of a card's text fields before they are
// bound as query parameters.
const MaxFieldBytes = 1 << 20

// ErrFieldTooLarge is returned when a text field exceeds MaxFieldBytes.
var ErrFieldTooLarge = errors.New("cardbox: text field too large")

// Card is a single front/back flashcard with its review state.
// Front doubles as the card's identity and the prompt shown to the operator.
type Card struct {
	Front     string
	Back      string
	StepIndex int
	CreatedAt time.Time
	UpdatedAt time.Time
	SourceID  int64 // 0 for manually added cards
}

// NewCardInput carries the operator-supplied fields of a card to be created.
type NewCardInput struct {
	Front string `validate:"required"`
	Back  string `validate:"required"`
}

var validate = validator.New()

// Validate checks that both fields are present and small enough to bind.
func (in NewCardInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("card %s is required", verrs[0].Field())
		}
		return err
	}
	if len(in.Front) > MaxFieldBytes {
		return fmt.Errorf("front is %d bytes: %w", len(in.Front), ErrFieldTooLarge)
	}
	if len(in.Back) > MaxFieldBytes {
		return fmt.Errorf("back is %d bytes: %w", len(in.Back), ErrFieldTooLarge)
	}
	return nil
}
