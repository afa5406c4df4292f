package models

import "time"

// User represents an account within the StarShout platform. Celebrities are
// users with IsCelebrity set; only verified celebrities appear in the public
// directory and can receive requests.
type User struct {
	ID                string
	Email             string
	FirstName         string
	LastName          string
	PasswordHash      string
	IsCelebrity       bool
	CelebrityVerified bool
	Bio               string
	PricePerVideo     int64
	Country           string
	City              string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Request statuses. Rejected and completed are terminal.
const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusRejected  = "rejected"
	RequestStatusCompleted = "completed"
)

// VideoRequest is a fan's ask for a personalized video from a celebrity.
type VideoRequest struct {
	ID              string
	RequesterID     string
	CelebrityID     string
	RecipientName   string
	Occasion        string
	Message         string
	Status          string
	RejectionReason string
	VideoID         string
	CreatedAt       time.Time
	AcceptedAt      *time.Time
	RejectedAt      *time.Time
	CompletedAt     *time.Time
}

// Video is an uploaded asset, either bound to a completed request or a
// standalone share retrievable only by its token.
type Video struct {
	ID               string
	RequestID        string
	UploaderID       string
	StorageName      string
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	ShareToken       string
	ViewCount        int64
	CreatedAt        time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Actor is the authenticated identity supplied by the transport layer to
// every core operation.
type Actor struct {
	ID          string
	IsCelebrity bool
}
