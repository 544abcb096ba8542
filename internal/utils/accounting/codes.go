package accounting

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

// ErrTooManySiblings is returned when a parent already holds 99 children.
var ErrTooManySiblings = errors.New("cannot create more than 99 siblings")

// ErrEntrySequenceExhausted is returned when a fiscal year runs out of entry numbers.
var ErrEntrySequenceExhausted = errors.New("entry number sequence exhausted for fiscal year")

const (
	entryNumberPrefix = "JE-"
	maxEntrySequence  = 999999
	maxSiblings       = 99
)

// NextRootCode returns max(root codes as int)+1, starting at "1".
func NextRootCode(rootCodes []string) (string, error) {
	maxCode := 0
	for _, c := range rootCodes {
		n, err := strconv.Atoi(c)
		if err != nil {
			return "", fmt.Errorf("root account code %q is not numeric: %w", c, err)
		}
		if n > maxCode {
			maxCode = n
		}
	}
	return strconv.Itoa(maxCode + 1), nil
}

// NextChildCode appends a two digit counter to the parent code.
// The counter is one past the highest counter among the existing children of parentCode.
func NextChildCode(parentCode string, childCodes []string) (string, error) {
	last := 0
	for _, c := range childCodes {
		if len(c) != len(parentCode)+2 || !strings.HasPrefix(c, parentCode) {
			continue
		}
		n, err := strconv.Atoi(c[len(c)-2:])
		if err != nil {
			return "", fmt.Errorf("child account code %q has a non numeric counter: %w", c, err)
		}
		if n > last {
			last = n
		}
	}
	if last >= maxSiblings {
		return "", ErrTooManySiblings
	}
	return fmt.Sprintf("%s%02d", parentCode, last+1), nil
}

// FormatEntryNumber renders a sequence as JE-######.
func FormatEntryNumber(seq int) string {
	return fmt.Sprintf("%s%06d", entryNumberPrefix, seq)
}

// ParseEntryNumber extracts the numeric suffix of an entry number.
func ParseEntryNumber(number string) (int, error) {
	if !strings.HasPrefix(number, entryNumberPrefix) {
		return 0, fmt.Errorf("entry number %q lacks the %s prefix", number, entryNumberPrefix)
	}
	return strconv.Atoi(strings.TrimPrefix(number, entryNumberPrefix))
}

// NextEntryNumber returns the number following last, or JE-000001 when last is empty.
func NextEntryNumber(last string) (string, error) {
	if last == "" {
		return FormatEntryNumber(1), nil
	}
	seq, err := ParseEntryNumber(last)
	if err != nil {
		return "", err
	}
	if seq >= maxEntrySequence {
		return "", ErrEntrySequenceExhausted
	}
	return FormatEntryNumber(seq + 1), nil
}

// ValidateHierarchy checks whether a child of childType may be placed under the parent.
//
// general parent:   any child
// assistant parent: analytic children only
// analytic parent:  no children
func ValidateHierarchy(parentType domain.AccountType, parentLevel int, childType domain.AccountType) error {
	if parentLevel >= domain.MaxAccountLevel {
		return fmt.Errorf("maximum account depth of %d reached", domain.MaxAccountLevel)
	}
	switch parentType {
	case domain.General:
		return nil
	case domain.Assistant:
		if childType != domain.Analytic {
			return fmt.Errorf("assistant accounts can only have analytic children")
		}
		return nil
	case domain.Analytic:
		return fmt.Errorf("analytic accounts cannot have children")
	default:
		return fmt.Errorf("unknown parent account type '%s'", parentType)
	}
}

// BuildFullPath joins the parent's path and the account name.
func BuildFullPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + " > " + name
}
