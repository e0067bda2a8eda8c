package chains

import (
	"github.com/tmc/langchaingo/llms"
)

// Prompts used by the ready-made chains below.
const (
	JokePrompt       = "Tell me a joke about {topic}"
	JokeSystemPrompt = "You are a helpful assistant that tells jokes"

	StoryTitlesPrompt = "suggest 10 story titles based on the following idea: we found aliens on {planet} while we are looking for water there."

	CompanyNamePrompt        = "What is the best name to describe a company that makes {product}?"
	CompanyDescriptionPrompt = "Write a 100 words description for the following company: {company_name}"

	TranslateReviewPrompt = "Translate the following review to english:\n\n{Review}"
	SummarizeReviewPrompt = "Can you summarize the following review in 1 sentence:\n\n{English_Review}"
	ReviewLanguagePrompt  = "What language is the following review:\n\n{Review}"
	FollowUpPrompt        = "Write a follow up response to the following summary in the specified language:\n\nSummary: {summary}\n\nLanguage: {language}"

	ReviewerSystemPrompt = "You are an expert product reviewer."
	FeaturesPrompt       = "List the main features of the product {product_name}."
	ProsPrompt           = "Given these features: {features}, list the pros of these features."
	ConsPrompt           = "Given these features: {features}, list the cons of these features."
)

// Step output names of ReviewTranslation.
const (
	EnglishReview   = "English_Review"
	ReviewSummary   = "summary"
	ReviewLanguage  = "language"
	FollowUpMessage = "followup_message"
)

// Joke is a single-prompt chain on "topic".
func Joke(model llms.Model, opts ...llms.CallOption) *Chain {
	return New(NewPrompt(JokePrompt), model, opts...).Named("joke")
}

// ChatJoke is Joke with a system message.
func ChatJoke(model llms.Model, opts ...llms.CallOption) *Chain {
	tmpl := NewChatTemplate(System(JokeSystemPrompt), Human(JokePrompt))
	return New(tmpl, model, opts...).Named("chat_joke")
}

// StoryTitles suggests story titles for "planet".
func StoryTitles(model llms.Model, opts ...llms.CallOption) *Chain {
	return New(NewPrompt(StoryTitlesPrompt), model, opts...).Named("story_titles")
}

// CompanyNaming names a company for "product" and then describes it. Outputs
// are "company_name" and "description".
func CompanyNaming(model llms.Model, opts ...llms.CallOption) *Sequential {
	return NewSequential(
		Step{Output: "company_name", Runner: New(NewPrompt(CompanyNamePrompt), model, opts...).Named("company_name")},
		Step{Output: "description", Runner: New(NewPrompt(CompanyDescriptionPrompt), model, opts...).Named("description")},
	)
}

// ReviewTranslation translates, summarizes and answers a "Review" in its
// original language.
func ReviewTranslation(model llms.Model, opts ...llms.CallOption) *Sequential {
	step := func(out, tmpl string) Step {
		return Step{Output: out, Runner: New(NewPrompt(tmpl), model, opts...).Named(out)}
	}
	return NewSequential(
		step(EnglishReview, TranslateReviewPrompt),
		step(ReviewSummary, SummarizeReviewPrompt),
		step(ReviewLanguage, ReviewLanguagePrompt),
		step(FollowUpMessage, FollowUpPrompt),
	)
}

// ProductReview lists the features of "product_name", then analyzes pros and
// cons of those features concurrently.
func ProductReview(model llms.Model, opts ...llms.CallOption) Runner {
	features := New(NewChatTemplate(System(ReviewerSystemPrompt), Human(FeaturesPrompt)), model, opts...).Named("features")
	analysis := NewParallel(
		Branch{Name: "pros", Runner: New(NewChatTemplate(System(ReviewerSystemPrompt), Human(ProsPrompt)), model, opts...).Named("pros")},
		Branch{Name: "cons", Runner: New(NewChatTemplate(System(ReviewerSystemPrompt), Human(ConsPrompt)), model, opts...).Named("cons")},
	).WithCombiner(ProsCons)

	seq := NewSequential(
		Step{Output: "features", Runner: features},
		Step{Output: "review", Runner: analysis},
	)
	return seq
}

// Subject expert prompts for SubjectRouter, in routing order.
var SubjectPrompts = []struct {
	Name     string
	Template string
}{
	{"physics", `You are a very smart physics professor. You are great at answering questions about physics in a concise and easy to understand manner. When you don't know the answer to a question you admit that you don't know.

Here is a question: {input}`},
	{"math", `You are a very good mathematician. You are great at answering math questions. You are so good because you are able to break down hard problems into their component parts, answer the component parts, and then put them together to answer the broader question.

Here is a question: {input}`},
	{"history", `You are a very good historian. You have an excellent knowledge of and understanding of people, events and contexts from a range of historical periods. You have the ability to think, reflect, debate, discuss and evaluate the past. You have a respect for historical evidence and the ability to make use of it to support your explanations and judgements.

Here is a question: {input}`},
	{"computer science", `You are a successful computer scientist. You have a passion for creativity, collaboration, forward-thinking, confidence, strong problem-solving capabilities, understanding of theories and algorithms, and excellent communication skills. You are great at answering coding questions. You are so good because you know how to solve a problem by describing the solution in imperative steps that a machine can easily interpret and you know how to choose a solution that has a good balance between time complexity and space complexity.

Here is a question: {input}`},
	{"biology", `You are a very good biologist. You have an excellent knowledge of and understanding of living organisms, their life processes, and their interactions with each other and their environments. You have the ability to think, reflect, debate, discuss and evaluate biological concepts and phenomena. You have a respect for scientific evidence and the ability to make use of it to support your explanations and judgements.

Here is a question: {input}`},
}

// SubjectRouterPrompt asks the model for the subject of "input".
const SubjectRouterPrompt = `
You are an expert at classifying questions into subject areas. Analyze the question and determine which subject area it belongs to.

Subject areas and their descriptions:
- physics: Questions about physical phenomena, forces, energy, radiation, thermodynamics, quantum mechanics, etc.
- math: Questions about calculations, equations, mathematical concepts, algebra, geometry, statistics, etc.
- history: Questions about historical events, people, periods, civilizations, wars, politics from the past, etc.
- computer science: Questions about programming, algorithms, data structures, software development, coding, etc.
- biology: Questions about living organisms, life processes, ecosystems, genetics, cellular functions, etc.
- DEFAULT: Questions that don't clearly fit into the above categories

Question: {input}

Think about the question and classify it. Consider keywords and concepts. No not explain your reasoning.

Examples:
- "What is black body radiation?" -> physics (radiation is a physics concept)
- "What is 2 + 2?" -> math (basic arithmetic)
- "Who was Napoleon?" -> history (historical figure)
- "How do I sort an array?" -> computer science (programming concept)
- "What is photosynthesis?" -> biology (biological process)

Now classify this question and respond with ONLY the subject name: physics, math, history, computer science, or DEFAULT.

Summarize the output text in exactly two lines. Be concise and capture the main points.
`

// SubjectRouter routes questions to a subject expert, or answers them as is.
func SubjectRouter(model llms.Model, opts ...llms.CallOption) *Router {
	dests := make([]Destination, 0, len(SubjectPrompts))
	for _, s := range SubjectPrompts {
		dests = append(dests, Destination{
			Name:   s.Name,
			Runner: New(NewPrompt(s.Template), model, opts...).Named(s.Name),
		})
	}
	classifier := New(NewPrompt(SubjectRouterPrompt), model, opts...).Named("router")
	def := New(NewPrompt("{input}"), model, opts...).Named(DefaultRoute)
	return NewRouter(classifier, def, dests...)
}

// Chain of thought prompts on "question".
const (
	BasicCoTPrompt = `
Question: {question}

Let's think step by step:
`
	ComplexCoTPrompt = `
Question: {question}

To solve this, I need to break it down into steps:

Step 1: Identify what we know
Step 2: Identify what we need to find
Step 3: Plan the solution approach
Step 4: Execute the solution
Step 5: Verify the answer

Let me work through this systematically:
`
)

// Sample questions for the chain of thought prompts.
const (
	ApplesQuestion   = "If a store has 23 apples and sells 8 apples in the morning and 6 apples in the afternoon, how many apples are left?"
	LibraryQuestion  = "A library had 15 books. They gave away 7 books and received 12 new books. How many books do they have now?"
	TrainingQuestion = "If training a neural network requires 100 epochs, and each epoch takes 2.5 minutes on average, but every 10th epoch takes an extra 30 seconds for validation, how long will the total training take?"
)

// BasicCoT asks the model to reason step by step.
func BasicCoT() PromptTemplate { return NewPrompt(BasicCoTPrompt) }

// ComplexCoT walks the model through a five step plan.
func ComplexCoT() PromptTemplate { return NewPrompt(ComplexCoTPrompt) }

// FewShotCoT shows two worked arithmetic examples before the question.
func FewShotCoT() *FewShot {
	examples := []map[string]string{
		{
			"question": "Roger has 5 tennis balls. He buys 2 more cans of tennis balls. Each can has 3 tennis balls. How many tennis balls does he have now?",
			"answer": `Let me think step by step:
1. Roger starts with 5 tennis balls
2. He buys 2 cans, each with 3 balls
3. So he gets 2 x 3 = 6 more tennis balls
4. Total tennis balls = 5 + 6 = 11 tennis balls`,
		},
		{
			"question": "The cafeteria had 23 apples. If they used 20 for lunch and bought 6 more, how many apples do they have?",
			"answer": `Let me think step by step:
1. Started with 23 apples
2. Used 20 apples for lunch, so 23 - 20 = 3 apples left
3. Bought 6 more apples
4. Total apples = 3 + 6 = 9 apples`,
		},
	}
	return NewFewShot(examples,
		NewPrompt("\nQuestion: {question}\nAnswer: {answer}\n"),
		"Solve these math problems step by step:\n",
		"\nQuestion: {question}\nAnswer: Let me think step by step:",
	)
}

var questionAnswer = NewPrompt("Question: {question}\n{answer}")

// SelfAsk demonstrates follow-up question decomposition on "input".
func SelfAsk() *FewShot {
	examples := []map[string]string{
		{
			"question": "Who was older when they won a Nobel Prize, Albert Einstein or Malala Yousafzai?",
			"answer": `
Are follow up questions needed here: Yes.
Follow up: How old was Albert Einstein when he won the Nobel Prize?
Intermediate answer: Einstein won the Nobel Prize in Physics in 1921, at age 42.
Follow up: How old was Malala Yousafzai when she won the Nobel Prize?
Intermediate answer: Malala won the Nobel Peace Prize in 2014, at age 17.
So the final answer is: Albert Einstein
`,
		},
		{
			"question": "Which country has a larger population, Canada or Australia?",
			"answer": `
Are follow up questions needed here: Yes.
Follow up: What is the population of Canada?
Intermediate answer: About 39 million (as of 2025).
Follow up: What is the population of Australia?
Intermediate answer: About 27 million (as of 2025).
So the final answer is: Canada
`,
		},
		{
			"question": "Was the Wright brothers’ first flight before or after the invention of the light bulb?",
			"answer": `
Are follow up questions needed here: Yes.
Follow up: When did the Wright brothers make their first flight?
Intermediate answer: 1903.
Follow up: When was the light bulb invented?
Intermediate answer: Thomas Edison patented the light bulb in 1879.
So the final answer is: The light bulb was invented before the Wright brothers' first flight.
`,
		},
		{
			"question": "Did Steve Jobs and Bill Gates both drop out of college?",
			"answer": `
Are follow up questions needed here: Yes.
Follow up: Did Steve Jobs drop out of college?
Intermediate answer: Yes, he dropped out of Reed College.
Follow up: Did Bill Gates drop out of college?
Intermediate answer: Yes, he dropped out of Harvard University.
So the final answer is: Yes
`,
		},
	}
	return NewFewShot(examples, questionAnswer, "", "Question: {input}")
}

// SelfAskQuestions are sample questions for SelfAsk.
var SelfAskQuestions = []string{
	"Which company was founded first, Tesla or Amazon?",
	"Is the capital of Australia farther south than the capital of New Zealand?",
	"Did the US declare war on Germany before or after the US declared war on Japan?",
	"Did the first president of the USA live to be 80?",
	"Was the creator of Linux born before 1970?",
	"Is the tallest mountain in Africa taller than the tallest mountain in Europe?",
	"Is the currency of Japan also used in South Korea?",
	"Which city is at a higher elevation, Denver or Mexico City?",
	"Was the iPhone released before or after Facebook was founded?",
	"Are the birthplaces of Elon Musk and Nelson Mandela in the same country?",
	"Who became president at a younger age, John F. Kennedy or Barack Obama?",
	"Which event happened first, the fall of the Berlin Wall or Nelson Mandela's release from prison?",
	"Did both Marie Curie and Albert Einstein win a Nobel Prize?",
}

// Emoji teaches the model that 😂 means exponentiation.
func Emoji() *FewShot {
	examples := []map[string]string{
		{"question": "2 😂 3", "answer": "8"},
		{"question": "2 😂 5", "answer": "32"},
		{"question": "3 😂 4", "answer": "81"},
	}
	return NewFewShot(examples, questionAnswer, "", "Question: {input}")
}

// EmojiQuestion is the question asked with Emoji.
const EmojiQuestion = "25 😂 4"
