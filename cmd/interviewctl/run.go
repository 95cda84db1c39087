package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"onboarding/pkg/enrichment"
	"onboarding/pkg/interview"
	"onboarding/pkg/logx"
	"onboarding/pkg/onboarding"
)

// quitCommand pauses the interview. State is already persisted.
const quitCommand = "/sair"

var errAnswerRequired = errors.New("resposta obrigatória")

var (
	runSession string
	runCompany string
	runWebsite string
	runProfile string
	runLogFile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start or resume an interview",
	Long: `Start a new onboarding interview, or resume one with --session.

Answers are saved after every question; type /sair to stop and resume later.
Select questions accept the option number or its value. An empty answer
accepts the value pre-filled from the company website.`,
	RunE: runInterviewCmd,
}

func init() {
	runCmd.Flags().StringVar(&runSession, "session", "", "Resume an existing session")
	runCmd.Flags().StringVar(&runCompany, "company", "", "Company name for a new session")
	runCmd.Flags().StringVar(&runWebsite, "website", "", "Company website for a new session")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "YAML company profile used to pre-fill answers")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Write log lines to this file instead of stderr")
	rootCmd.AddCommand(runCmd)
}

func runInterviewCmd(cmd *cobra.Command, _ []string) error {
	if runLogFile != "" {
		f, err := os.OpenFile(runLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logx.SetOutput(f)
		defer logx.SetOutput(nil)
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()
	a.startMetrics()

	ctx := cmd.Context()
	sessionID, err := prepareSession(ctx, a.service)
	if err != nil {
		return err
	}

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	if err := runInterview(ctx, a.service, sessionID, p); err != nil {
		return err
	}
	if line := a.sessionUsageLine(sessionID); line != "" {
		p.println(line)
	}
	return nil
}

// prepareSession resolves --session or creates a new session from the flags.
func prepareSession(ctx context.Context, svc *onboarding.Service) (string, error) {
	var profile *enrichment.CompanyProfile
	if runProfile != "" {
		var err error
		if profile, err = enrichment.LoadProfile(runProfile); err != nil {
			return "", err
		}
	}

	if runSession != "" {
		if profile != nil {
			if err := svc.SetEnrichment(ctx, runSession, profile.Map()); err != nil {
				return "", err
			}
		}
		return runSession, nil
	}

	company, website := runCompany, runWebsite
	var data map[string]string
	if profile != nil {
		data = profile.Map()
		if company == "" {
			company = profile.CompanyName
		}
		if website == "" {
			website = profile.Website
		}
	}
	if strings.TrimSpace(company) == "" {
		return "", errors.New("--company or --session is required")
	}
	session, err := svc.StartSession(ctx, company, website, data)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

// runInterview drives one session until it is confirmed or the user quits.
func runInterview(ctx context.Context, svc *onboarding.Service, sessionID string, p *prompter) error {
	p.printf("Sessão %s\n\n", sessionID)

	q, err := svc.NextQuestion(ctx, sessionID)
	if err != nil {
		return err
	}
	for q != nil {
		p.showQuestion(q)
		line, err := p.readLine()
		if errors.Is(err, io.EOF) || line == quitCommand {
			p.printf("\nProgresso salvo. Retome com: interviewctl run --session %s\n", sessionID)
			return nil
		}
		if err != nil {
			return err
		}

		answer, err := resolveAnswer(q, line)
		if err != nil {
			p.printf("  %v\n\n", err)
			continue
		}
		res, err := svc.Submit(ctx, sessionID, q.ID, answer, interview.SourceText)
		if err != nil {
			return err
		}
		p.showProgress(res.Progress)
		q = res.Next
	}

	review, err := svc.Review(ctx, sessionID)
	if err != nil {
		return err
	}
	p.showReview(review)
	if review.Confirmed {
		return nil
	}

	p.println("Alguma observação final? (enter para confirmar sem observações)")
	notes, err := p.readLine()
	if errors.Is(err, io.EOF) || notes == quitCommand {
		p.printf("\nRevisão pendente. Retome com: interviewctl run --session %s\n", sessionID)
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := svc.ConfirmReview(ctx, sessionID, notes); err != nil {
		return err
	}
	p.println("Onboarding confirmado. Obrigado!")
	return nil
}

// resolveAnswer maps raw input to the answer value for q.
func resolveAnswer(q *interview.Question, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		if q.PreFilledValue != "" {
			return q.PreFilledValue, nil
		}
		if q.Required {
			return "", errAnswerRequired
		}
		return "", nil
	}

	switch q.Kind {
	case interview.KindSelect:
		return matchOption(q.Options, input)
	case interview.KindMultiSelect:
		parts := strings.Split(input, ",")
		values := make([]string, 0, len(parts))
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			v, err := matchOption(q.Options, part)
			if err != nil {
				return "", err
			}
			values = append(values, v)
		}
		return strings.Join(values, ","), nil
	default:
		return input, nil
	}
}

// matchOption accepts a 1-based option number, a value or a label.
func matchOption(options []interview.Option, input string) (string, error) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(options) {
			return "", fmt.Errorf("opção %d inválida, escolha entre 1 e %d", n, len(options))
		}
		return options[n-1].Value, nil
	}
	for _, opt := range options {
		if strings.EqualFold(opt.Value, input) || strings.EqualFold(opt.Label, input) {
			return opt.Value, nil
		}
	}
	return "", fmt.Errorf("opção %q não reconhecida", input)
}

// prompter reads answers and renders questions.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *prompter) println(s string) {
	fmt.Fprintln(p.out, s)
}

// readLine returns io.EOF only when no partial line was read.
func (p *prompter) readLine() (string, error) {
	p.printf("> ")
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) showQuestion(q *interview.Question) {
	if q.IsFollowUp() {
		p.printf("↳ %s\n", q.Text)
	} else {
		p.printf("%s\n", q.Text)
	}
	if q.ContextHint != "" {
		p.printf("  (%s)\n", q.ContextHint)
	}
	for i, opt := range q.Options {
		p.printf("  %d) %s\n", i+1, opt.Label)
	}
	if q.PreFilledValue != "" {
		p.printf("  Sugestão: %s\n  [enter para aceitar]\n", q.PreFilledValue)
	} else if !q.Required {
		p.printf("  [opcional, enter para pular]\n")
	}
}

func (p *prompter) showProgress(pr interview.Progress) {
	p.printf("  [%d/%d perguntas principais]\n\n", pr.CoreAnswered, pr.CoreTotal)
}

func (p *prompter) showReview(r interview.Review) {
	p.println("Revisão das respostas:")
	for _, a := range r.Answers {
		text := a.QuestionText
		if text == "" {
			text = a.QuestionID
		}
		value := a.Answer
		if value == "" {
			value = "-"
		}
		p.printf("  • %s\n    %s\n", text, value)
	}
	p.println("")
}
