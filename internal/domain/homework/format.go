package homework

import "fmt"

// FormatStatus renders the notification text for a record.
func FormatStatus(rec Record) (string, error) {
	name, err := stringField(rec, FieldName)
	if err != nil {
		return "", err
	}
	code, err := stringField(rec, FieldStatus)
	if err != nil {
		return "", err
	}

	verdict, ok := Verdict(Status(code))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, code)
	}
	return fmt.Sprintf("Status of review for \"%s\" changed. %s", name, verdict), nil
}

func stringField(rec Record, key string) (string, error) {
	value, ok := rec[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want a string", ErrWrongShape, key, value)
	}
	return s, nil
}
