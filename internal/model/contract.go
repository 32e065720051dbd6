package model

import (
	"fmt"
	"strings"
)

// ContractKind is a set of contract kinds. A single clause carries exactly one
// kind; collectors are configured with any combination.
type ContractKind uint8

const (
	// Requires marks preconditions.
	Requires ContractKind = 1 << iota
	// Ensures marks postconditions.
	Ensures
	// Invariant marks object invariants.
	Invariant

	// AllKinds is the combined view over every kind.
	AllKinds = Requires | Ensures | Invariant
)

// OtherCategory is the synthetic bucket for clauses no category rule matched.
const OtherCategory = "Other"

var contractKinds = []ContractKind{Requires, Ensures, Invariant}

var contractKindNames = map[ContractKind]string{
	Requires:  "Requires",
	Ensures:   "Ensures",
	Invariant: "Invariant",
}

// Has reports whether every kind in other is part of k.
func (k ContractKind) Has(other ContractKind) bool {
	return other != 0 && k&other == other
}

// Kinds lists the single kinds in k in declaration order.
func (k ContractKind) Kinds() []ContractKind {
	kinds := make([]ContractKind, 0, len(contractKinds))

	for _, kind := range contractKinds {
		if k.Has(kind) {
			kinds = append(kinds, kind)
		}
	}

	return kinds
}

func (k ContractKind) String() string {
	kinds := k.Kinds()
	if len(kinds) == 0 {
		return "None"
	}

	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, contractKindNames[kind])
	}

	return strings.Join(names, "|")
}

// ParseContractKind parses a comma or pipe separated list of kind names
// ("requires,ensures", "all"). Matching is case-insensitive.
func ParseContractKind(value string) (ContractKind, error) {
	var kinds ContractKind

	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == '|' || r == ' '
	})

	for _, field := range fields {
		switch strings.ToLower(field) {
		case "requires":
			kinds |= Requires
		case "ensures":
			kinds |= Ensures
		case "invariant", "invariants":
			kinds |= Invariant
		case "all":
			kinds |= AllKinds
		default:
			return 0, fmt.Errorf("unknown contract kind %q", field)
		}
	}

	if kinds == 0 {
		return 0, fmt.Errorf("no contract kind in %q", value)
	}

	return kinds, nil
}

// Clause is one classified unit extracted from a contract declaration.
type Clause struct {
	Kind   ContractKind
	Text   string
	Labels []string
	File   Path
}

// Category returns the clause's label, or OtherCategory when it has none.
func (c Clause) Category() string {
	if len(c.Labels) == 0 {
		return OtherCategory
	}

	return c.Labels[0]
}

// Uncategorized reports whether no category rule matched the clause.
func (c Clause) Uncategorized() bool {
	return len(c.Labels) == 0
}
