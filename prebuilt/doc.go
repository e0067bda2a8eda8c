// Package prebuilt provides ready-to-use agents built on the graph package.
//
// # Tool Agent
//
// ToolAgent runs the classic agent/tools loop for chat models with native
// tool calling. The "agent" node asks the model for the next step; while the
// reply carries tool calls and the iteration budget is not spent, the "tools"
// node executes them and feeds the results back as tool messages.
//
//	agent, err := prebuilt.CreateToolAgent(model, tool.BasicAgentTools(tool.SetConfig{}),
//		prebuilt.WithSystemPrompt(prebuilt.BasicSystemPrompt(time.Now(), "")),
//		prebuilt.WithMaxIterations(10),
//	)
//	res, err := agent.Run(ctx, "what is the current time in Tokyo?")
//	fmt.Println(res.Answer)
//
// A tool that does not exist or fails never aborts the run: the model sees
// an error message as the tool result and may try another approach.
//
// # Prompt Agent
//
// PromptAgent targets models without tool calling. The tools are described
// in the prompt, and calls are parsed from the reply text as
//
//	{"tool": "add", "args": {"a": 3, "b": 4}}
//
// NewCalculatorAgent wires it to the add, multiply and divide tools:
//
//	agent, _ := prebuilt.NewCalculatorAgent(model)
//	answer, err := agent.RunSimpleQuery(ctx, "What is 10 divided by 2?")
package prebuilt
