package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage is a message submitted through the contact form. It is
// stored first; email and form-relay delivery are best effort.
type ContactMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Lead is a newsletter signup, email only.
type Lead struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
