package usecase

import (
	"fmt"

	"HomeworkBot/internal/domain"
)

const (
	opTranslate = "translate status"

	reviewingMessage = "work taken under review"
	reviewedTemplate = "Your work \"%s\" was reviewed!\n\n%s"
)

var verdicts = map[domain.Status]string{
	domain.StatusApproved: "The reviewer liked everything, you can move on to the next lesson.",
	domain.StatusRejected: "Unfortunately the reviewer found mistakes in the work.",
}

// TranslateStatus maps a submission to the chat message announcing its status.
func TranslateStatus(sub domain.Submission) (string, error) {
	if sub.Name == "" || sub.Status == "" {
		return "", domain.Errorf(domain.KindMalformedRecord, opTranslate,
			"homework record is missing name or status (name=%q status=%q)", sub.Name, sub.Status)
	}

	if sub.Status == domain.StatusReviewing {
		return reviewingMessage, nil
	}

	verdict, ok := verdicts[sub.Status]
	if !ok {
		return "", &domain.UnknownStatusError{Name: sub.Name, Status: sub.Status}
	}

	return fmt.Sprintf(reviewedTemplate, sub.Name, verdict), nil
}
