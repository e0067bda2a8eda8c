// Package chains composes prompts and chat models into small pipelines.
//
// A Chain renders a prompt (PromptTemplate, ChatTemplate or FewShot), sends
// the messages to an llms.Model and returns the reply text. Chains can be
// combined:
//
//   - Sequential runs steps in order; each step's output becomes a template
//     variable for the steps after it.
//   - Parallel runs branches concurrently over the same values and merges
//     the results with a Combiner.
//   - Router asks a classifier chain which destination should answer and
//     falls back to a default chain.
//
// The constructors in builtins.go reproduce the classic tutorial chains:
// story titles, company naming, review translation, product review, a
// subject router, chain of thought and few-shot prompts.
package chains
