package domain

// SubjectType differentiates the kinds of token subjects.
type SubjectType string

const (
	SubjectTypeAccount SubjectType = "ACCOUNT"
)
