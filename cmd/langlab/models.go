package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/chains"
	"github.com/smallnest/langlab/log"
	"github.com/smallnest/langlab/render"
)

func (a *app) modelsCmd() *cobra.Command {
	var ollama bool
	var compatURL string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List model presets and supported providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			presets, err := a.presets()
			if err != nil {
				return err
			}
			render.PresetTable(a.out, presets, a.activeName(presets))
			a.printf("Supported providers: [%s]\n", strings.Join(a.switcher.ListProviders(), " "))

			if ollama {
				names, err := a.switcher.ListOllamaModels(cmd.Context())
				if err != nil {
					log.Warn("%v", err)
				}
				a.printf("\nAvailable Ollama models: [%s]\n", strings.Join(names, " "))
			}
			if compatURL != "" {
				names, err := a.switcher.ListCompatibleModels(cmd.Context(), compatURL)
				if err != nil {
					return fmt.Errorf("list models at %s: %w", compatURL, err)
				}
				a.printf("\nModels served at %s: [%s]\n", compatURL, strings.Join(names, " "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ollama, "ollama", false, "also list models pulled into the local Ollama server")
	cmd.Flags().StringVar(&compatURL, "compat-url", "", "also list models of an OpenAI compatible endpoint")
	return cmd
}

func (a *app) askCmd() *cobra.Command {
	var system string
	var samples bool
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the selected model a question",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model(cmd.Context())
			if err != nil {
				return err
			}
			if samples || len(args) == 0 {
				return a.askSamples(cmd, model)
			}

			question := strings.Join(args, " ")
			var msgs []llms.MessageContent
			if system != "" {
				msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, system))
			}
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, question))
			answer, err := chains.Generate(cmd.Context(), model, msgs)
			if err != nil {
				return err
			}
			return a.print(answer)
		},
	}
	cmd.Flags().StringVar(&system, "system", "", "optional system prompt")
	cmd.Flags().BoolVar(&samples, "samples", false, "answer the sample questions with the concise answer prompt")
	return cmd
}

func (a *app) askSamples(cmd *cobra.Command, model llms.Model) error {
	chain := chains.Question(model)
	a.printf("%s\n", strings.Repeat("=", 40))
	for i, q := range chains.SampleQuestions {
		question := fmt.Sprintf("%d. %s", i+1, q)
		answer, err := chain.Invoke(cmd.Context(), chains.Values("question", question))
		if err != nil {
			return err
		}
		a.printf("Question : %s\nAnswer:\n", question)
		if err := a.print(answer); err != nil {
			return err
		}
		a.printf("%s\n", strings.Repeat("-", 40))
	}
	return nil
}
