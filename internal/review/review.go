// Package review drives one interactive review round against the card store.
package review

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mlund/cardbox/internal/domain"
	"github.com/mlund/cardbox/internal/schedule"
	"github.com/mlund/cardbox/internal/storage"
)

// Session holds the dependencies for a review round. In and Out default to
// the process's standard streams in the CLI; tests substitute buffers.
type Session struct {
	DB  *storage.DB
	In  io.Reader
	Out io.Writer
	Now func() time.Time
}

// NewSession creates a session reading operator judgments from in and
// writing prompts to out.
func NewSession(db *storage.DB, in io.Reader, out io.Writer) *Session {
	return &Session{DB: db, In: in, Out: out, Now: time.Now}
}

// Run performs one review round: present the first due card in scan order,
// read the operator's judgment, and persist the card's next step. If no card
// is due it returns immediately with no output.
func (s *Session) Run() error {
	card, ok, err := s.firstDue()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	in := bufio.NewReader(s.In)

	fmt.Fprint(s.Out, card.Front)
	if _, err := readLine(in); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Fprintln(s.Out, card.Back)
	fmt.Fprint(s.Out, "Ok? (Y/n) ")
	reply, err := readLine(in)
	if err != nil {
		return fmt.Errorf("failed to read judgment: %w", err)
	}

	next := schedule.NextStep(card.StepIndex, passed(reply))
	if err := s.DB.UpdateCardStep(card.Front, next); err != nil {
		return err
	}
	return nil
}

// DueFronts returns the fronts of all due cards in the store's scan order.
func (s *Session) DueFronts() ([]string, error) {
	cards, err := s.DB.AllCards()
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var fronts []string
	for _, c := range cards {
		if schedule.IsDue(c.StepIndex, c.UpdatedAt, now) {
			fronts = append(fronts, c.Front)
		}
	}
	return fronts, nil
}

// firstDue picks the first due card in the store's natural scan order.
func (s *Session) firstDue() (domain.Card, bool, error) {
	cards, err := s.DB.AllCards()
	if err != nil {
		return domain.Card{}, false, err
	}

	now := s.Now()
	for _, c := range cards {
		if schedule.IsDue(c.StepIndex, c.UpdatedAt, now) {
			return c, true, nil
		}
	}
	return domain.Card{}, false, nil
}

// passed reports whether the operator's reply counts as a successful recall.
// An empty reply defaults to yes.
func passed(reply string) bool {
	return reply == "" || strings.EqualFold(reply, "y")
}

// readLine reads one line of operator input. End-of-input counts as an empty
// line so a closed stdin behaves like pressing enter.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
