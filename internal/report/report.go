package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/gameiq/internal/ledger"
	"github.com/abhisek/gameiq/internal/quiz"
	"github.com/abhisek/gameiq/internal/store"
)

const (
	barWidth   = 40
	timeLayout = "2006-01-02 15:04"
)

// Usage prints a user's monthly spend and their recent calls.
func Usage(w io.Writer, s *ledger.Summary) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AI usage for "+s.UserID) + "\n")
	b.WriteString(field("Tier", string(s.Tier)))
	b.WriteString(field("Period", "since "+s.PeriodStart.Format("2006-01-02")))
	b.WriteString(field("Spent", cents(s.SpentCents)+" of "+cents(s.CapCents)))
	b.WriteString(field("Remaining", cents(s.RemainingCents)))
	b.WriteString(field("Calls", strconv.FormatInt(s.Calls, 10)))
	b.WriteString(field("Tokens", fmt.Sprintf("%d in / %d out", s.InputTokens, s.OutputTokens)))

	if s.CapCents > 0 {
		bar := Bar{Label: "Budget", Percent: float64(s.SpentCents) / float64(s.CapCents), Width: barWidth}
		b.WriteString("\n" + bar.View() + "\n")
	} else {
		b.WriteString("\n" + dimStyle.Render("No AI access on this tier.") + "\n")
	}

	if len(s.Recent) > 0 {
		t := newTable("Time", "Purpose", "Model", "In", "Out", "Cost", "OK")
		for _, r := range s.Recent {
			t.Row(
				r.CreatedAt.Local().Format(timeLayout),
				r.Purpose,
				truncate(r.Model, 28),
				strconv.FormatInt(r.InputTokens, 10),
				strconv.FormatInt(r.OutputTokens, 10),
				cents(r.CostCents),
				okMark(r.Success),
			)
		}
		b.WriteString("\n" + t.String() + "\n")
	}

	_, err := lipgloss.Fprint(w, cardStyle.Render(strings.TrimRight(b.String(), "\n"))+"\n")
	return err
}

// Sessions prints each session with its attempts.
func Sessions(w io.Writer, sessions []quiz.SessionSummary) error {
	if len(sessions) == 0 {
		_, err := lipgloss.Fprintln(w, dimStyle.Render("No quizzes yet."))
		return err
	}

	for _, s := range sessions {
		var b strings.Builder
		status := failStyle.Render("not passed")
		if s.Passed {
			status = passStyle.Render("passed")
		}
		b.WriteString(titleStyle.Render(s.Session.Name) + "  " + status + "\n")
		b.WriteString(field("Session", s.Session.ID))
		b.WriteString(field("Kind", sessionKind(s.Session)))
		b.WriteString(field("Questions", strconv.Itoa(len(s.Session.QuestionIDs))))
		b.WriteString(field("Attempts", strconv.Itoa(s.TotalAttempts)))
		b.WriteString(Score(s.BestScore, quiz.PassThreshold, barWidth) + dimStyle.Render("  best") + "\n")

		if len(s.Attempts) > 0 {
			t := newTable("#", "Score", "Correct", "Time", "Completed")
			for _, a := range s.Attempts {
				t.Row(
					strconv.Itoa(a.AttemptNumber),
					fmt.Sprintf("%d%%", a.TotalScore),
					fmt.Sprintf("%d/%d", a.CorrectAnswers, a.TotalQuestions),
					seconds(a.TotalTimeTaken),
					a.CompletedAt.Local().Format(timeLayout),
				)
			}
			b.WriteString(t.String() + "\n")
		}

		if _, err := lipgloss.Fprint(w, cardStyle.Render(strings.TrimRight(b.String(), "\n"))+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Session prints a single session, e.g. one just created.
func Session(w io.Writer, s *store.Session) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Name) + "\n")
	b.WriteString(field("Session", s.ID))
	b.WriteString(field("Kind", sessionKind(*s)))
	b.WriteString(field("Questions", strconv.Itoa(len(s.QuestionIDs))))
	b.WriteString(field("Best", fmt.Sprintf("%d%%", s.BestScore)))
	_, err := lipgloss.Fprint(w, cardStyle.Render(strings.TrimRight(b.String(), "\n"))+"\n")
	return err
}

// Progress prints where a user stands in the unlock sequence.
func Progress(w io.Writer, p quiz.Progress) error {
	mark := failStyle.Render("locked")
	if p.CanGenerate {
		mark = passStyle.Render("unlocked")
	}
	line := "Next quiz: " + mark + dimStyle.Render("  ("+p.String()+")")
	if p.QuestionsPerQuiz > 0 {
		ai := "off"
		if p.AIAvailable {
			ai = "available"
		}
		line += "\n" + dimStyle.Render(fmt.Sprintf("%d questions per generated quiz, AI generation %s", p.QuestionsPerQuiz, ai))
	}
	_, err := lipgloss.Fprintln(w, line)
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return valueStyle.Padding(0, 1)
		})
}

func field(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func sessionKind(s store.Session) string {
	if s.Kind == store.KindCore {
		return "core"
	}
	return fmt.Sprintf("generated #%d", s.Sequence)
}

func cents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}

func seconds(s *int) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%ds", *s)
}

func okMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
