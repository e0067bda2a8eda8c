package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/chains"
)

var chainKinds = []string{"joke", "simple", "sequential", "review", "parallel", "router", "cot", "fewshot"}

func (a *app) chainCmd() *cobra.Command {
	return &cobra.Command{
		Use:       fmt.Sprintf("chain <%s> [input]", strings.Join(chainKinds, "|")),
		Short:     "Run one of the prompt chain examples",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: chainKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, input := args[0], strings.Join(args[1:], " ")
			run, ok := a.chainRunners()[kind]
			if !ok {
				return fmt.Errorf("unknown chain %q, want one of %v", kind, chainKinds)
			}
			model, err := a.model(cmd.Context())
			if err != nil {
				return err
			}
			return run(cmd.Context(), model, input)
		},
	}
}

type chainRunner func(ctx context.Context, model llms.Model, input string) error

func (a *app) chainRunners() map[string]chainRunner {
	return map[string]chainRunner{
		"joke":       a.runJoke,
		"simple":     a.runStoryTitles,
		"sequential": a.runCompanyNaming,
		"review":     a.runReviewTranslation,
		"parallel":   a.runProductReview,
		"router":     a.runRouter,
		"cot":        a.runChainOfThought,
		"fewshot":    a.runFewShot,
	}
}

// inputs returns input as a single sample, or defaults when it is empty.
func inputs(input string, defaults ...string) []string {
	if input != "" {
		return []string{input}
	}
	return defaults
}

func (a *app) runJoke(ctx context.Context, model llms.Model, input string) error {
	for _, topic := range inputs(input, "cats and dogs") {
		out, err := chains.ChatJoke(model).Invoke(ctx, chains.Values("topic", topic))
		if err != nil {
			return err
		}
		if err := a.print(out); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) runStoryTitles(ctx context.Context, model llms.Model, input string) error {
	for i, planet := range inputs(input, chains.Planets...) {
		if i > 0 {
			a.printf("%s\n", equals(60))
		}
		out, err := chains.StoryTitles(model).Invoke(ctx, chains.Values("planet", planet))
		if err != nil {
			return err
		}
		a.printf("Planet: %s\nStory Titles:\n", planet)
		if err := a.print(out); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) runCompanyNaming(ctx context.Context, model llms.Model, input string) error {
	for _, product := range inputs(input, chains.Products...) {
		a.printf("Product: %s\n", product)
		out, err := chains.CompanyNaming(model).Run(ctx, chains.Values("product", product))
		if err != nil {
			return err
		}
		a.printf("Company Name:\n")
		if err := a.print(out["company_name"]); err != nil {
			return err
		}
		a.printf("\nDescription:\n")
		if err := a.print(out["description"]); err != nil {
			return err
		}
		a.printf("\n%s\n", equals(60))
	}
	return nil
}

func (a *app) runReviewTranslation(ctx context.Context, model llms.Model, input string) error {
	for _, review := range inputs(input, chains.Reviews...) {
		out, err := chains.ReviewTranslation(model).Run(ctx, chains.Values("Review", review))
		if err != nil {
			return err
		}
		a.printf("Original Review: %s\n", review)
		for _, part := range []struct{ title, key string }{
			{"English Review", chains.EnglishReview},
			{"Summary", chains.ReviewSummary},
			{"Follow-up Response", chains.FollowUpMessage},
		} {
			a.printf("\n%s:\n", part.title)
			if err := a.print(out[part.key]); err != nil {
				return err
			}
		}
		a.printf("%s\n", equals(60))
	}
	return nil
}

func (a *app) runProductReview(ctx context.Context, model llms.Model, input string) error {
	for _, product := range inputs(input, "MacBook Pro") {
		out, err := chains.ProductReview(model).Invoke(ctx, chains.Values("product_name", product))
		if err != nil {
			return err
		}
		if err := a.print(out); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) runRouter(ctx context.Context, model llms.Model, input string) error {
	router := chains.SubjectRouter(model)
	for _, q := range inputs(input, chains.RouterQuestions...) {
		res, err := router.Route(ctx, q)
		if err != nil {
			return err
		}
		a.printf("Question: %s\nRoute: %s\nAnswer: ", q, res.Destination)
		if err := a.print(res.Answer); err != nil {
			return err
		}
		a.printf("%s\n", equals(60))
	}
	return nil
}

func (a *app) runChainOfThought(ctx context.Context, model llms.Model, input string) error {
	examples := []struct {
		title    string
		prompt   chains.Formatter
		question string
	}{
		{"BASIC CHAIN OF THOUGHT - Math Problem:", chains.BasicCoT(), chains.ApplesQuestion},
		{"FEW-SHOT CHAIN OF THOUGHT:", chains.FewShotCoT(), chains.LibraryQuestion},
		{"COMPLEX REASONING CHAIN OF THOUGHT:", chains.ComplexCoT(), chains.TrainingQuestion},
	}
	for _, ex := range examples {
		question := ex.question
		if input != "" {
			question = input
		}
		a.printf("\n%s\n%s\n%s\n", equals(60), ex.title, equals(60))
		out, err := chains.New(ex.prompt, model).Invoke(ctx, chains.Values("question", question))
		if err != nil {
			return err
		}
		if err := a.print(out); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) runFewShot(ctx context.Context, model llms.Model, input string) error {
	emoji := inputs(input, chains.EmojiQuestion)[0]
	out, err := chains.New(chains.Emoji(), model).Invoke(ctx, chains.Values("input", emoji))
	if err != nil {
		return err
	}
	a.printf("Question: %s\nAnswer:\n", emoji)
	if err := a.print(out); err != nil {
		return err
	}
	if input != "" {
		return nil
	}

	selfAsk := chains.New(chains.SelfAsk(), model)
	for _, q := range chains.SelfAskQuestions {
		out, err := selfAsk.Invoke(ctx, chains.Values("input", q))
		if err != nil {
			return err
		}
		a.printf("%s\nQuestion: %s\nAnswer:\n", dashes(30), q)
		if err := a.print(out); err != nil {
			return err
		}
	}
	return nil
}
