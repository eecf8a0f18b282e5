package event

import "errors"

// Engine errors. Handlers map these onto HTTP statuses; none of them is
// retryable — each reflects bad input or a state conflict that an
// unchanged retry would reproduce.
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrPersonNotFound   = errors.New("person not found")
	ErrAttendeeNotFound = errors.New("attendee not found")
	ErrDayNotFound      = errors.New("event day not found")
	ErrCategoryNotFound = errors.New("event category not found")

	ErrInvalidRange          = errors.New("end date must not be before start date")
	ErrEventClosed           = errors.New("event is closed")
	ErrAlreadyClosed         = errors.New("event is already closed")
	ErrDuplicateRegistration = errors.New("person is already registered for this event")
	ErrDateChangeBlocked     = errors.New("event dates cannot change once attendance is recorded")
	ErrCreditAlreadyGranted  = errors.New("attendee has received empowerment and cannot be removed")

	ErrIncompleteAttendance   = errors.New("one or more selected attendees did not attend every day")
	ErrMissingEmpowermentLink = errors.New("event category requires an empowerment link")
	ErrMissingGuruLink        = errors.New("event category requires a guru link")

	ErrOverrideNotAllowed = errors.New("attendance override requires the admin role")
	ErrCloseInProgress    = errors.New("a close operation for this event is already in progress")
)
