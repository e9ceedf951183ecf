package cmd

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"hoursync/config"
	"hoursync/internal/timeutil"
)

// InputValidationError reports a malformed positional argument.
type InputValidationError struct {
	Field   string
	Message string
}

func (e *InputValidationError) Error() string {
	return e.Message
}

var inputMessages = map[string]string{
	"From":      "From date seems invalid.",
	"ProjectID": "ProjectID seems invalid.",
	"TaskID":    "TaskID seems invalid.",
}

type sourceInput struct {
	From      time.Time
	ProjectID int64 `validate:"gt=0"`
}

type syncInput struct {
	sourceInput
	TaskID string `validate:"required,everhour_task"`
}

func invalidInput(field string) *InputValidationError {
	return &InputValidationError{Field: field, Message: inputMessages[field]}
}

// parseFromDate accepts YYYY-MM-DD (UTC midnight) or an RFC3339 instant.
func parseFromDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(timeutil.ISODateLayout, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	return time.Time{}, invalidInput("From")
}

func parseProjectID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, invalidInput("ProjectID")
	}
	return id, nil
}

func parseSourceArgs(args []string) (sourceInput, error) {
	if len(args) < 2 {
		return sourceInput{}, invalidInput("From")
	}

	from, err := parseFromDate(args[0])
	if err != nil {
		return sourceInput{}, err
	}
	projectID, err := parseProjectID(args[1])
	if err != nil {
		return sourceInput{}, err
	}

	input := sourceInput{From: from, ProjectID: projectID}
	if err := validateInput(input); err != nil {
		return sourceInput{}, err
	}
	return input, nil
}

func parseSyncArgs(args []string) (syncInput, error) {
	source, err := parseSourceArgs(args)
	if err != nil {
		return syncInput{}, err
	}
	if len(args) < 3 {
		return syncInput{}, invalidInput("TaskID")
	}

	input := syncInput{sourceInput: source, TaskID: args[2]}
	if err := validateInput(input); err != nil {
		return syncInput{}, err
	}
	return input, nil
}

func validateInput(input any) error {
	err := config.NewValidator().Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return invalidInput(fieldErrs[0].Field())
	}
	return err
}
