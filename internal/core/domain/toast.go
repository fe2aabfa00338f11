package domain

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

type Toast struct {
	ID       int64
	Message  string
	Severity Severity
}
