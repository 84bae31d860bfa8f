package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"scholarship-test-service/internal/config"
	"scholarship-test-service/internal/domain"
	"scholarship-test-service/internal/session"
)

// NewTakeCmd runs one timed attempt in the terminal.
func NewTakeCmd(configPath *string) *cobra.Command {
	var account accountFlags
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take the scholarship test in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			c, err := account.connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			seconds := int(config.TTLDuration(cfg.Test.Duration, session.DefaultDuration).Seconds())
			return runTake(cmd.Context(), c, seconds, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	account.bind(cmd)
	return cmd
}

const takeHelp = `commands:
  a|b|c|d   answer the current question
  n / p     next / previous question
  g N       go to question N
  f         flag or unflag the current question
  l         list all questions with their status
  s         submit (asks for confirmation)
  q         quit without submitting
`

type taker struct {
	ctrl  *session.Controller
	out   io.Writer
	lines <-chan string

	mu       sync.Mutex
	lastWarn int
}

func runTake(ctx context.Context, api session.API, seconds int, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := &taker{out: out, lastWarn: -1}
	t.ctrl = session.NewController(api, session.WithObserver(t.observe))
	defer t.ctrl.Close()

	if _, err := t.ctrl.LoadQuestions(ctx); err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	if err := t.ctrl.StartTimer(ctx, seconds); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	t.lines = lines

	t.printf("%d questions, %s on the clock.\n%s", t.ctrl.Snapshot().QuestionCount(), formatSeconds(seconds), takeHelp)
	t.render()

	for {
		select {
		case <-t.ctrl.Done():
			t.printResult()
			return nil
		default:
		}
		select {
		case <-t.ctrl.Done():
			t.printResult()
			return nil
		case line, ok := <-t.lines:
			if !ok {
				t.printf("input closed; attempt left without submitting\n")
				return nil
			}
			if quit := t.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// handle runs one command line and reports whether the session should end.
func (t *taker) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}
	snap := t.ctrl.Snapshot()
	current, _ := snap.CurrentQuestion()

	switch cmd := fields[0]; cmd {
	case "a", "b", "c", "d":
		if err := t.ctrl.SelectAnswer(current.ID, strings.ToUpper(cmd)); err != nil {
			t.printf("cannot answer: %v\n", err)
			return false
		}
		if !t.ctrl.Navigate(1) {
			t.render()
			t.printf("last question; type s to submit\n")
			return false
		}
	case "n":
		t.ctrl.Navigate(1)
	case "p":
		t.ctrl.Navigate(-1)
	case "g":
		if len(fields) < 2 {
			t.printf("usage: g N\n")
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || !t.ctrl.GoTo(n-1) {
			t.printf("no question %s\n", fields[1])
			return false
		}
	case "f":
		if err := t.ctrl.ToggleFlag(current.ID); err != nil {
			t.printf("cannot flag: %v\n", err)
			return false
		}
	case "l":
		t.list()
		return false
	case "s":
		t.submit(ctx)
		return false
	case "q":
		if snap.Phase() == session.InProgress && !t.confirm("leave without submitting? [y/N] ") {
			return false
		}
		return true
	case "h", "help", "?":
		t.printf("%s", takeHelp)
		return false
	default:
		t.printf("unknown command %q; type h for help\n", cmd)
		return false
	}
	t.render()
	return false
}

func (t *taker) submit(ctx context.Context) {
	snap := t.ctrl.Snapshot()
	if unanswered := snap.QuestionCount() - snap.AnsweredCount(); unanswered > 0 {
		if !t.confirm(fmt.Sprintf("%d unanswered; submit anyway? [y/N] ", unanswered)) {
			return
		}
	} else if !t.confirm("submit your answers? [y/N] ") {
		return
	}
	if err := t.ctrl.Submit(ctx); err != nil {
		t.printf("submission failed: %v\ntype s to retry\n", err)
	}
}

func (t *taker) confirm(prompt string) bool {
	t.printf("%s", prompt)
	select {
	case line, ok := <-t.lines:
		return ok && strings.EqualFold(strings.TrimSpace(line), "y")
	case <-t.ctrl.Done():
		return false
	}
}

// observe reports timer warnings and automatic submission progress.
func (t *taker) observe(snap session.Snapshot) {
	remaining := snap.Remaining()
	switch {
	case snap.Phase() == session.InProgress && (remaining == 300 || remaining == 60):
		t.warnOnce(remaining, "%s remaining\n", formatSeconds(remaining))
	case snap.Phase() == session.Submitting && snap.Submitting() && remaining == 0:
		t.warnOnce(0, "time is up, submitting your answers\n")
	case snap.Phase() == session.Submitting && !snap.Submitting() && snap.Err() != nil:
		t.printf("automatic submission failed: %v\ntype s to retry\n", snap.Err())
	}
}

func (t *taker) warnOnce(mark int, format string, args ...any) {
	t.mu.Lock()
	if t.lastWarn == mark {
		t.mu.Unlock()
		return
	}
	t.lastWarn = mark
	t.mu.Unlock()
	t.printf(format, args...)
}

func (t *taker) render() {
	snap := t.ctrl.Snapshot()
	q, ok := snap.CurrentQuestion()
	if !ok {
		return
	}
	flag := ""
	if snap.Flagged(q.ID) {
		flag = " [flagged]"
	}
	t.printf("\nQuestion %d of %d%s  (%s left, %d answered)\n%s\n",
		snap.CurrentIndex()+1, snap.QuestionCount(), flag,
		formatSeconds(snap.Remaining()), snap.AnsweredCount(), q.Text)
	selected, _ := snap.Answer(q.ID)
	for _, label := range domain.Options {
		marker := " "
		if label == selected {
			marker = "*"
		}
		t.printf(" %s %s) %s\n", marker, label, q.OptionText(label))
	}
}

func (t *taker) list() {
	snap := t.ctrl.Snapshot()
	for i, q := range snap.Questions() {
		status := "-"
		if opt, ok := snap.Answer(q.ID); ok {
			status = opt
		}
		flag := ""
		if snap.Flagged(q.ID) {
			flag = " flagged"
		}
		t.printf("%2d. [%s]%s\n", i+1, status, flag)
	}
}

func (t *taker) printResult() {
	snap := t.ctrl.Snapshot()
	res, ok := snap.Result()
	if !ok {
		return
	}
	t.printf("\nscore %d/%d (%d%%), time %s\n", res.Score, res.TotalQuestions, res.Percentage, formatSeconds(res.TimeTaken))
	t.ctrl.Acknowledge()
}

func (t *taker) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}
