// internal/domain/homework/homework.go
package homework

// RawResponse is the decoded, unvalidated body of the homework status endpoint.
type RawResponse map[string]any

// Record is a single homework entry from the "homeworks" list.
// Only "homework_name" and "status" are used; other fields are ignored.
type Record map[string]any

// Status is a review status code reported by the API.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

// Field names of the status endpoint payload.
const (
	FieldHomeworks   = "homeworks"
	FieldCurrentDate = "current_date"
	FieldName        = "homework_name"
	FieldStatus      = "status"
	FieldCode        = "code"
	FieldError       = "error"
)

var verdicts = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Verdict returns the human-readable text for a known status code.
func Verdict(s Status) (string, bool) {
	v, ok := verdicts[s]
	return v, ok
}
