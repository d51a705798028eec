package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/progression"
	"github.com/phrazzld/studykit/internal/service"
	"github.com/spf13/cobra"
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true}

func newSummarizeCmd(d deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize FILE",
		Short: "Print a study summary of FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			study, err := newStudy(ctx, d, opts)
			if err != nil {
				return err
			}
			_, doc, err := loadDocument(ctx, study, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.Summary)
			return nil
		},
	}
}

func newStudyCmd(d deps, opts *rootOptions, kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			study, err := newStudy(ctx, d, opts)
			if err != nil {
				return err
			}
			classID, doc, err := loadDocument(ctx, study, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generating %s for %q...\n", kind, doc.Title)
			material, _, err := study.GenerateMaterial(ctx, classID, doc.ID, domain.MaterialKind(kind))
			if err != nil {
				return err
			}

			view, err := study.StartSession(ctx, classID, material.ID)
			if err != nil {
				return err
			}
			p := &prompter{in: bufio.NewScanner(cmd.InOrStdin()), out: out}
			fmt.Fprintf(out, "\n%s (%d items)\n", view.Title, view.State.Total)

			var final *service.StepResult
			if material.Kind == domain.MaterialQuiz {
				final, err = runQuiz(ctx, study, view, p)
			} else {
				final, err = runFlashcards(ctx, study, view, p)
			}
			if err != nil {
				return err
			}
			printOutcome(out, final)
			return nil
		},
	}
}

// loadDocument reads path into a new class and summarizes it synchronously.
func loadDocument(ctx context.Context, study *service.StudyService, path string) (uuid.UUID, *domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	in := service.UploadInput{Title: title}
	ext := strings.ToLower(filepath.Ext(path))
	if imageExts[ext] {
		in.Image = &generation.Image{MIMEType: mime.TypeByExtension(ext), Data: data}
	} else {
		in.Text = string(data)
	}

	class, _, err := study.CreateClass(ctx, "studyctl")
	if err != nil {
		return uuid.Nil, nil, err
	}
	doc, _, err := study.UploadDocument(ctx, class.ID, in)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !doc.Ready() {
		if err := study.SummarizeDocument(ctx, class.ID, doc.ID); err != nil {
			return uuid.Nil, nil, err
		}
		if doc, err = study.GetDocument(ctx, class.ID, doc.ID); err != nil {
			return uuid.Nil, nil, err
		}
	}
	if !doc.Ready() {
		return uuid.Nil, nil, fmt.Errorf("summarize %s: %s", path, doc.SummaryError)
	}
	return class.ID, doc, nil
}

// prompter reads one answer per line.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func runQuiz(ctx context.Context, study *service.StudyService, view *service.SessionView, p *prompter) (*service.StepResult, error) {
	for {
		q := view.State.Question
		fmt.Fprintf(p.out, "\nQuestion %d/%d: %s\n", view.State.Index+1, view.State.Total, q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
		}

		line, err := p.ask("Answer: ")
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(q.Options) {
			fmt.Fprintf(p.out, "Enter a number from 1 to %d.\n", len(q.Options))
			continue
		}

		step, err := study.Answer(ctx, view.ID, n-1)
		if err != nil {
			return nil, err
		}
		if step.Answer.Correct {
			fmt.Fprintln(p.out, "Correct!")
		} else {
			fmt.Fprintf(p.out, "Incorrect. The answer was %d) %s\n",
				step.Answer.CorrectIndex+1, q.Options[step.Answer.CorrectIndex])
		}
		if step.Outcome != nil {
			return step, nil
		}
		view = &step.Session
	}
}

func runFlashcards(ctx context.Context, study *service.StudyService, view *service.SessionView, p *prompter) (*service.StepResult, error) {
	for {
		card := view.State.Card
		fmt.Fprintf(p.out, "\nCard %d/%d: %s\n", view.State.Index+1, view.State.Total, card.Front)
		if _, err := p.ask("Press Enter to flip..."); err != nil {
			return nil, err
		}

		flipped, err := study.Flip(ctx, view.ID)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(p.out, "  %s\n", flipped.State.Card.Back)

		var known bool
		for {
			line, err := p.ask("Did you know it? [y/n]: ")
			if err != nil {
				return nil, err
			}
			switch strings.ToLower(line) {
			case "y", "yes":
				known = true
			case "n", "no":
				known = false
			default:
				continue
			}
			break
		}

		step, err := study.Mark(ctx, view.ID, known)
		if err != nil {
			return nil, err
		}
		if step.Outcome != nil {
			return step, nil
		}
		view = &step.Session
	}
}

func printOutcome(out io.Writer, step *service.StepResult) {
	o := step.Outcome
	fmt.Fprintf(out, "\nScore: %d%% (%d/%d)\n", o.Score, o.Correct, o.Total)
	if step.Award == nil {
		return
	}
	printAward(out, *step.Award)
}

func printAward(out io.Writer, a progression.Award) {
	fmt.Fprintf(out, "+%d XP\n", a.XPGained)
	if a.LeveledUp() {
		fmt.Fprintf(out, "Level up! You are now level %d.\n", a.LevelAfter)
	}
	for _, m := range a.Unlocked {
		fmt.Fprintf(out, "Milestone unlocked: %s (+%d XP)\n", m.Title, m.XPReward)
	}
}
