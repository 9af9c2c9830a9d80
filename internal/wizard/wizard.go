// Package wizard implements the product registration step machine:
// Search, Confirm, MarketSelection and Edit, with an exit guard.
package wizard

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jask/budregistry/internal/product"
)

// ErrInvalidTransition is returned when an operation is not allowed in the
// current state. The state is left unchanged.
var ErrInvalidTransition = errors.New("invalid wizard transition")

// Ticket identifies one asynchronous lookup or generation. Only the most
// recently issued ticket is honoured.
type Ticket struct {
	Seq   uint64
	Query string
}

// Valid reports whether the ticket refers to an issued request.
func (t Ticket) Valid() bool {
	return t.Seq != 0
}

// Wizard is the registration session. It is not safe for concurrent use;
// asynchronous work reports back through ApplyResults and FinishGenerate.
type Wizard struct {
	useCase UseCase
	log     *zap.Logger
	state   State

	seq     uint64
	pending uint64
	// status to restore when a generation produces nothing
	beforeGenerate SearchStatus
}

// New starts a wizard on an empty Search step.
func New(useCase UseCase, log *zap.Logger) *Wizard {
	if useCase == "" {
		useCase = UseCaseRegister
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Wizard{useCase: useCase, log: log, state: Search{}}
}

func (w *Wizard) UseCase() UseCase { return w.useCase }

// State returns the current state value.
func (w *Wizard) State() State { return w.state }

func (w *Wizard) Step() Step { return w.state.Step() }

// IsClosed reports whether the wizard reached its terminal state.
func (w *Wizard) IsClosed() bool {
	_, ok := w.state.(Closed)
	return ok
}

// Saved returns the product surfaced by Save, if any.
func (w *Wizard) Saved() *product.Product {
	if c, ok := w.state.(Closed); ok {
		return c.Saved
	}
	return nil
}

func (w *Wizard) invalid(op string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, w.state.Step())
}

func (w *Wizard) issue(query string) Ticket {
	w.seq++
	w.pending = w.seq
	return Ticket{Seq: w.seq, Query: query}
}

// SetQuery updates the search text. A non-empty query switches to loading
// and returns the ticket the caller must pass back to ApplyResults.
func (w *Wizard) SetQuery(q string) (Ticket, error) {
	s, ok := w.state.(Search)
	if !ok || s.Status == StatusGenerating {
		return Ticket{}, w.invalid("set query")
	}
	s.Query = q
	s.Candidates = nil
	if strings.TrimSpace(q) == "" {
		s.Status = StatusIdle
		w.pending = 0
		w.state = s
		return Ticket{}, nil
	}
	s.Status = StatusLoading
	w.state = s
	return w.issue(q), nil
}

// searchStep returns the Search state that async work reports into, along
// with a setter. While the exit prompt is open the paused Search state is
// updated in place, so dismissing the prompt resumes with the result.
func (w *Wizard) searchStep() (Search, func(State), bool) {
	switch st := w.state.(type) {
	case Search:
		return st, func(next State) { w.state = next }, true
	case ExitPrompt:
		if s, ok := st.Resume.(Search); ok {
			return s, func(next State) { w.state = ExitPrompt{Resume: next} }, true
		}
	}
	return Search{}, nil, false
}

// ApplyResults delivers lookup results. Results for a stale ticket, or
// arriving after the wizard left Search, are dropped and false is returned.
func (w *Wizard) ApplyResults(t Ticket, candidates []product.Product, err error) bool {
	s, set, ok := w.searchStep()
	if !ok || s.Status != StatusLoading || !t.Valid() || t.Seq != w.pending {
		return false
	}
	w.pending = 0
	if err != nil {
		w.log.Warn("candidate lookup failed", zap.String("query", t.Query), zap.Error(err))
		candidates = nil
	}
	if w.useCase.ForcesEmptySearch() {
		candidates = nil
	}
	s.Candidates = make([]product.Product, len(candidates))
	for i, c := range candidates {
		s.Candidates[i] = product.Normalize(c)
	}
	if len(s.Candidates) == 0 {
		s.Status = StatusNoMatches
	} else {
		s.Status = StatusResults
	}
	set(s)
	return true
}

// SelectCandidate moves from Search to Confirm.
func (w *Wizard) SelectCandidate(id string) error {
	s, ok := w.state.(Search)
	if !ok || s.Status != StatusResults {
		return w.invalid("select candidate")
	}
	for _, c := range s.Candidates {
		if c.ID == id {
			w.state = Confirm{Query: s.Query, Candidates: s.Candidates, Candidate: c.Clone()}
			return nil
		}
	}
	return fmt.Errorf("%w: unknown candidate %q", ErrInvalidTransition, id)
}

// CanCreateNew reports whether the create-new affordance is offered.
func (w *Wizard) CanCreateNew() bool {
	s, ok := w.state.(Search)
	return ok && s.Status == StatusNoMatches && strings.TrimSpace(s.Query) != ""
}

// CreateNew fabricates a blank draft named after the query and jumps
// straight to Edit.
func (w *Wizard) CreateNew() error {
	if !w.CanCreateNew() {
		return w.invalid("create new")
	}
	s := w.state.(Search)
	w.state = Edit{Draft: product.Normalize(product.Product{Name: s.Query}), Origin: OriginManual}
	return nil
}

// CanBack reports whether Back is enabled.
func (w *Wizard) CanBack() bool {
	switch w.state.(type) {
	case Confirm, MarketSelection:
		return true
	}
	return false
}

// Back steps Confirm to Search and MarketSelection to Confirm.
func (w *Wizard) Back() error {
	switch s := w.state.(type) {
	case Confirm:
		w.state = Search{Query: s.Query, Candidates: s.Candidates, Status: StatusResults}
	case MarketSelection:
		w.state = Confirm{Query: s.Query, Candidates: s.Candidates, Candidate: s.Candidate, Markets: s.Markets}
	default:
		return w.invalid("back")
	}
	return nil
}

// CanNext reports whether Next is enabled.
func (w *Wizard) CanNext() bool {
	switch s := w.state.(type) {
	case Confirm:
		return true
	case MarketSelection:
		return len(s.Markets) > 0
	}
	return false
}

// Next advances Confirm to MarketSelection or Edit depending on the use case,
// and MarketSelection to Edit once a market is chosen.
func (w *Wizard) Next() error {
	if !w.CanNext() {
		return w.invalid("next")
	}
	switch s := w.state.(type) {
	case Confirm:
		if w.useCase.RequiresMarkets() {
			w.state = MarketSelection{Query: s.Query, Candidates: s.Candidates, Candidate: s.Candidate, Markets: s.Markets}
			return nil
		}
		w.state = Edit{Draft: product.Normalize(s.Candidate), Origin: OriginCandidate}
	case MarketSelection:
		draft := s.Candidate.Clone()
		draft.Markets = append(draft.Markets, s.Markets...)
		w.state = Edit{Draft: product.Normalize(draft), Origin: OriginCandidate}
	}
	return nil
}

// ToggleMarket flips a market on the MarketSelection step.
func (w *Wizard) ToggleMarket(code string) error {
	s, ok := w.state.(MarketSelection)
	if !ok {
		return w.invalid("toggle market")
	}
	if !product.IsKnownMarket(code) {
		return fmt.Errorf("%w: unknown market %q", product.ErrInvalidProduct, code)
	}
	code = product.CanonicalMarket(code)
	out := make([]string, 0, len(s.Markets)+1)
	found := false
	for _, m := range s.Markets {
		if m == code {
			found = true
			continue
		}
		out = append(out, m)
	}
	if !found {
		out = append(out, code)
	}
	s.Markets = out
	w.state = s
	return nil
}

// Markets returns the markets chosen so far.
func (w *Wizard) Markets() []string {
	switch s := w.state.(type) {
	case MarketSelection:
		return append([]string(nil), s.Markets...)
	case Confirm:
		return append([]string(nil), s.Markets...)
	}
	return nil
}

// Draft returns the edit draft when in Edit.
func (w *Wizard) Draft() (product.Product, bool) {
	if e, ok := w.state.(Edit); ok {
		return e.Draft.Clone(), true
	}
	return product.Product{}, false
}

// Cancel leaves Edit for a cleared Search step.
func (w *Wizard) Cancel() error {
	if _, ok := w.state.(Edit); !ok {
		return w.invalid("cancel")
	}
	w.pending = 0
	w.state = Search{}
	return nil
}

// Save closes the wizard and surfaces the normalized product.
func (w *Wizard) Save(p product.Product) (product.Product, error) {
	e, ok := w.state.(Edit)
	if !ok {
		return product.Product{}, w.invalid("save")
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = e.Draft.ID
	}
	p = product.Normalize(p)
	if err := product.Validate(p); err != nil {
		return product.Product{}, err
	}
	saved := p.Clone()
	w.state = Closed{Saved: &saved}
	w.log.Info("wizard saved", zap.String("name", p.Name), zap.Stringer("origin", e.Origin))
	return saved, nil
}

// HasUnsavedData reports a non-empty query, a selected candidate or a
// chosen market.
func (w *Wizard) HasUnsavedData() bool {
	return unsaved(w.state)
}

func unsaved(st State) bool {
	switch s := st.(type) {
	case Search:
		return strings.TrimSpace(s.Query) != ""
	case Confirm, MarketSelection, Edit:
		return true
	case ExitPrompt:
		return unsaved(s.Resume)
	}
	return false
}

// RequestClose handles escape or the close button outside Edit. It closes
// immediately when nothing would be lost and prompts otherwise. The return
// value reports whether the wizard closed.
func (w *Wizard) RequestClose() (bool, error) {
	switch w.state.(type) {
	case Edit, Closed:
		return false, w.invalid("close")
	case ExitPrompt:
		return false, nil
	}
	if !w.HasUnsavedData() {
		w.close()
		return true, nil
	}
	w.state = ExitPrompt{Resume: w.state}
	return false, nil
}

// ConfirmExit discards the session.
func (w *Wizard) ConfirmExit() error {
	if _, ok := w.state.(ExitPrompt); !ok {
		return w.invalid("confirm exit")
	}
	w.close()
	return nil
}

// DismissExit returns to the state the prompt interrupted.
func (w *Wizard) DismissExit() error {
	p, ok := w.state.(ExitPrompt)
	if !ok {
		return w.invalid("dismiss exit")
	}
	w.state = p.Resume
	return nil
}

func (w *Wizard) close() {
	w.pending = 0
	w.state = Closed{}
}

// CanGenerate reports whether AI-assisted drafting is enabled.
func (w *Wizard) CanGenerate() bool {
	s, ok := w.state.(Search)
	return ok && s.Status != StatusGenerating && strings.TrimSpace(s.Query) != ""
}

// BeginGenerate marks the search step as generating and returns the ticket
// for FinishGenerate. Any in-flight lookup is superseded.
func (w *Wizard) BeginGenerate() (Ticket, error) {
	if !w.CanGenerate() {
		return Ticket{}, w.invalid("generate")
	}
	s := w.state.(Search)
	w.beforeGenerate = s.Status
	if w.beforeGenerate == StatusLoading {
		w.beforeGenerate = StatusIdle
	}
	s.Status = StatusGenerating
	w.state = s
	return w.issue(s.Query), nil
}

// FinishGenerate delivers a generated draft. A product moves to Edit; nil
// clears the indicator and stays on Search. Stale tickets are dropped. A
// draft arriving behind the exit prompt becomes the state DismissExit
// resumes.
func (w *Wizard) FinishGenerate(t Ticket, p *product.Product) bool {
	s, set, ok := w.searchStep()
	if !ok || s.Status != StatusGenerating || !t.Valid() || t.Seq != w.pending {
		return false
	}
	w.pending = 0
	if p == nil {
		s.Status = w.beforeGenerate
		set(s)
		return true
	}
	set(Edit{Draft: product.Normalize(*p), Origin: OriginGenerated})
	return true
}
