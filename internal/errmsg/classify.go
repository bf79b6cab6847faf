package errmsg

import "strings"

// Category is a coarse error class used for presentation decisions
// such as whether to offer a retry.
type Category string

const (
	CategoryNetwork    Category = "network"
	CategoryAuth       Category = "auth"
	CategoryDatabase   Category = "database"
	CategoryValidation Category = "validation"
	CategoryUnknown    Category = "unknown"
)

var keywordCategories = []struct {
	words    []string
	category Category
}{
	{[]string{"network", "fetch", "timeout", "connection", "dial"}, CategoryNetwork},
	{[]string{"auth", "jwt", "login", "credentials", "session", "token"}, CategoryAuth},
	{[]string{"validation", "invalid", "required", "too long"}, CategoryValidation},
	{[]string{"database", "constraint", "relation", "policy", "permission", "not found", "access denied", "duplicate"}, CategoryDatabase},
}

// Classify assigns raw to a category. It does not depend on translation.
func Classify(raw Raw) Category {
	switch r := raw.(type) {
	case nil:
		return CategoryUnknown
	case NetworkError:
		return CategoryNetwork
	case AuthError:
		return CategoryAuth
	case Invalid:
		return CategoryValidation
	case BackendError:
		// SQLSTATE class 22 is data exceptions, 23 integrity violations on input.
		if strings.HasPrefix(r.Code, "22") || r.Code == "23514" {
			return CategoryValidation
		}
		return CategoryDatabase
	}

	msg := strings.ToLower(Message(raw))
	for _, kc := range keywordCategories {
		for _, w := range kc.words {
			if strings.Contains(msg, w) {
				return kc.category
			}
		}
	}
	return CategoryUnknown
}

// ClassifyError is Classify(From(err)).
func ClassifyError(err error) Category {
	return Classify(From(err))
}
