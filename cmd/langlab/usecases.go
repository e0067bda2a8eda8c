package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/chat"
	"github.com/smallnest/langlab/render"
)

func dashes(n int) string { return strings.Repeat("-", n) }
func equals(n int) string { return strings.Repeat("=", n) }

func (a *app) runUseCases(ctx context.Context, model llms.Model) error {
	a.printf("LangChain Messages - Use Case Examples\n%s\n", equals(50))
	for i, uc := range chat.UseCases() {
		render.Section(a.out, fmt.Sprintf("USE CASE %d: %s", i+1, uc.Title))
		answer, err := uc.Run(ctx, model)
		if err != nil {
			a.printf("Error: %v\n", err)
			continue
		}
		a.printf("AI Response:\n")
		if err := a.print(answer); err != nil {
			return err
		}
	}
	a.printf("\n%s\n", equals(50))
	return nil
}
