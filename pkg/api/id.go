package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 16
	charset  = "abcdefghijklmnopqrstuvwxyz0123456789"

	executionIDPrefix = "exec_"
	callIDPrefix      = "call_"
)

var executionIDPattern = regexp.MustCompile(`^exec_[a-z0-9]{16}$`)

// NewExecutionID returns an identifier for one sandbox session, used to
// correlate log lines of a single execution.
func NewExecutionID() string {
	return executionIDPrefix + randomAlphanumeric(idLength)
}

// NewCallID returns a tool call identifier for generators that do not
// assign their own.
func NewCallID() string {
	return callIDPrefix + randomAlphanumeric(idLength)
}

// ValidateExecutionID reports whether id has the shape produced by NewExecutionID.
func ValidateExecutionID(id string) bool {
	return executionIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
