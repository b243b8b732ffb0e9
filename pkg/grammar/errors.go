package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLabel indicates a label that is not in the catalog. It means the
// grammar definition and the catalog have drifted apart.
var ErrUnknownLabel = errors.New("unknown grammar label")

// ErrUnknownNamespace is returned by ParseNamespace for unrecognized names.
var ErrUnknownNamespace = errors.New("unknown label namespace")

// Namespace is the label namespace a classification was attempted in.
type Namespace uint8

// Namespaces.
const (
	NamespaceTerminal Namespace = iota + 1
	NamespaceNonterminal
	NamespaceAny
)

func (ns Namespace) String() string {
	switch ns {
	case NamespaceTerminal:
		return "terminal"
	case NamespaceNonterminal:
		return "nonterminal"
	case NamespaceAny:
		return "any"
	default:
		return "unknown"
	}
}

// ParseNamespace parses "terminal", "nonterminal", or "any". The empty string
// means any.
func ParseNamespace(name string) (Namespace, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "terminal":
		return NamespaceTerminal, nil
	case "nonterminal":
		return NamespaceNonterminal, nil
	case "any", "":
		return NamespaceAny, nil
	default:
		return NamespaceAny, fmt.Errorf("%w: %q", ErrUnknownNamespace, name)
	}
}

// ClassificationError reports a label that could not be classified.
type ClassificationError struct {
	Label     string
	Namespace Namespace
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s %q (namespace %s)", ErrUnknownLabel, e.Label, e.Namespace)
}

// Unwrap returns ErrUnknownLabel.
func (e *ClassificationError) Unwrap() error {
	return ErrUnknownLabel
}
