package domain

// Watermark is the review-service timestamp (seconds since epoch) after which
// new review results are requested. Zero means "from the beginning of time".
type Watermark int64

// NoWatermark marks a watermark that was never set.
const NoWatermark Watermark = -1

// Valid reports whether the watermark can be sent to the review service.
func (w Watermark) Valid() bool {
	return w >= 0
}

// Status is the review state reported for a submission.
type Status string

const (
	StatusReviewing Status = "reviewing"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Submission is one reviewed homework as returned by the review service.
type Submission struct {
	Name   string `json:"homework_name"`
	Status Status `json:"status"`
}

// StatusUpdate is a decoded homework_statuses response.
type StatusUpdate struct {
	Homeworks []Submission `json:"homeworks"`
	// CurrentDate is nil when the service did not echo a new watermark.
	CurrentDate *Watermark `json:"current_date"`
}

// Latest returns the first submission of the update, the only one the bot tracks.
func (u StatusUpdate) Latest() (Submission, bool) {
	if len(u.Homeworks) == 0 {
		return Submission{}, false
	}
	return u.Homeworks[0], true
}
