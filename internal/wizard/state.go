package wizard

import (
	"fmt"
	"strings"

	"github.com/jask/budregistry/internal/product"
)

// Step names a wizard state.
type Step int

const (
	StepSearch Step = iota
	StepConfirm
	StepMarketSelection
	StepEdit
	StepExitPrompt
	StepClosed
)

func (s Step) String() string {
	switch s {
	case StepSearch:
		return "search"
	case StepConfirm:
		return "confirm"
	case StepMarketSelection:
		return "market-selection"
	case StepEdit:
		return "edit"
	case StepExitPrompt:
		return "exit-prompt"
	case StepClosed:
		return "closed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// SearchStatus is the lookup indicator shown on the search step.
type SearchStatus int

const (
	StatusIdle SearchStatus = iota
	StatusLoading
	StatusResults
	StatusNoMatches
	StatusGenerating
)

func (s SearchStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusResults:
		return "results"
	case StatusNoMatches:
		return "no-matches"
	case StatusGenerating:
		return "generating"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Origin records how the edit draft came to be.
type Origin int

const (
	OriginCandidate Origin = iota
	OriginManual
	OriginGenerated
)

func (o Origin) String() string {
	switch o {
	case OriginCandidate:
		return "candidate"
	case OriginManual:
		return "manual"
	case OriginGenerated:
		return "generated"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// State is one of Search, Confirm, MarketSelection, Edit, ExitPrompt or Closed.
type State interface {
	Step() Step
	isState()
}

// Search is the lookup step.
type Search struct {
	Query      string
	Candidates []product.Product
	Status     SearchStatus
}

// Confirm shows the chosen candidate before editing.
type Confirm struct {
	Query      string
	Candidates []product.Product
	Candidate  product.Product
	// Markets survives a round trip through MarketSelection and back.
	Markets []string
}

// MarketSelection collects target markets before editing.
type MarketSelection struct {
	Query      string
	Candidates []product.Product
	Candidate  product.Product
	Markets    []string
}

// Edit hands the draft to the shared product editor.
type Edit struct {
	Draft  product.Product
	Origin Origin
}

// ExitPrompt asks whether to discard unsaved wizard input.
type ExitPrompt struct {
	Resume State
}

// Closed is terminal. Saved is nil when the wizard was dismissed.
type Closed struct {
	Saved *product.Product
}

func (Search) Step() Step          { return StepSearch }
func (Confirm) Step() Step         { return StepConfirm }
func (MarketSelection) Step() Step { return StepMarketSelection }
func (Edit) Step() Step            { return StepEdit }
func (ExitPrompt) Step() Step      { return StepExitPrompt }
func (Closed) Step() Step          { return StepClosed }

func (Search) isState()          {}
func (Confirm) isState()         {}
func (MarketSelection) isState() {}
func (Edit) isState()            {}
func (ExitPrompt) isState()      {}
func (Closed) isState()          {}

// UseCase selects a wizard variant.
type UseCase string

const (
	UseCaseRegister       UseCase = "register"
	UseCaseEmptySearch    UseCase = "empty-search"
	UseCaseRequireMarkets UseCase = "require-markets"
)

// UseCases lists the accepted use cases.
var UseCases = []UseCase{UseCaseRegister, UseCaseEmptySearch, UseCaseRequireMarkets}

// ParseUseCase accepts a use case name; empty means register.
func ParseUseCase(s string) (UseCase, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UseCaseRegister, nil
	}
	for _, uc := range UseCases {
		if string(uc) == s {
			return uc, nil
		}
	}
	return "", fmt.Errorf("unknown wizard use case %q", s)
}

// ForcesEmptySearch reports whether every lookup must come back empty.
func (u UseCase) ForcesEmptySearch() bool {
	return u == UseCaseEmptySearch
}

// RequiresMarkets reports whether MarketSelection sits between Confirm and Edit.
func (u UseCase) RequiresMarkets() bool {
	return u == UseCaseRequireMarkets
}
