// Langlab - a hands-on lab for LLM programming in Go
//
// Langlab collects the building blocks of the usual LLM tutorial track and
// runs them against any configured model: prompt templates, few-shot and
// chain-of-thought prompting, sequential, parallel and routing chains, tool
// calling agents, graph workflows, chat with persistent memory and small
// evaluation experiments.
//
// # Quick Start
//
// Pick a preset in config.yaml (or with ACTIVE_CONFIG) and run the CLI:
//
//	go install github.com/smallnest/langlab/cmd/langlab@latest
//	langlab models
//	langlab ask "What is the capital of France?"
//	langlab chain router
//	langlab agent -v "what is the current time in Tokyo?"
//	langlab chat --store sqlite --session demo
//	langlab graph priority --mermaid
//
// Or use the packages directly:
//
//	model, err := models.Configured(ctx, config.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	joke, err := chains.Joke(model).Invoke(ctx, chains.Values("topic", "dogs"))
//
// # Package Structure
//
// config/
// Model presets: provider, model name and generation parameters, plus the
// active preset name. .env files are loaded on request.
//
// models/
// The model switcher. Builds an llms.Model for ollama, llamacpp, openai,
// anthropic, mistral and google, and lists locally available models.
//
// chains/
// Prompt templates, chat templates, few-shot prompts, and chains composing
// them sequentially, in parallel or behind a router.
//
// graph/
// A typed state graph executor with conditional edges, retries, listeners,
// span tracing and Mermaid/ASCII export.
//
// prebuilt/
// The tool calling agent and the prompt-parsed calculator agent.
//
// tool/
// Arithmetic, date and time, timezone, weather, web search, Wikipedia and
// stock market tools.
//
// workflows/
// The demo and priority routing graphs.
//
// chat/ and store/
// Conversations with a windowed history, persisted in memory, Redis,
// SQLite or PostgreSQL.
//
// render/, eval/, metrics/, log/
// Terminal and HTML rendering, dataset experiments, Prometheus metrics and
// leveled logging.
//
// # Configuration
//
//   - ACTIVE_CONFIG: preset name overriding the one in the presets file
//   - OLLAMA_HOST: address of the local Ollama server
//   - OPENAI_COMPAT_API_KEY: token for OpenAI compatible servers
//   - OPENAI_API_KEY, ANTHROPIC_API_KEY, MISTRAL_API_KEY: hosted providers, unless a preset sets api_key
//   - DATABASE_URL: default connection string of the PostgreSQL history store
//   - LANGLAB_*: any CLI flag, e.g. LANGLAB_LOG_LEVEL=debug or LANGLAB_TRACE=spans.jsonl
package langlab // import "github.com/smallnest/langlab"
