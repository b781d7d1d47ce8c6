package core

// Change records one field a resource modified, with its value before and
// after. History and rollback are built from these.
type Change struct {
	Target string `json:"target"`
	Field  string `json:"field"`
	From   string `json:"from"`
	To     string `json:"to"`
	// Absent is set when the field had no value before the change.
	Absent bool `json:"absent,omitempty"`
	// Temporary is set when the change does not survive a reboot.
	Temporary bool `json:"temporary,omitempty"`
}

// Result is the outcome of a resource Apply.
type Result struct {
	Changed bool
	Message string
	Changes []Change
	Err     error
}

func SuccessChange(msg string) Result {
	return Result{Changed: true, Message: msg}
}

func SuccessNoChange(msg string) Result {
	return Result{Changed: false, Message: msg}
}

func Failure(err error, msg string) Result {
	return Result{Changed: false, Message: msg, Err: err}
}
