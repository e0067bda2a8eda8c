package chains

import "github.com/tmc/langchaingo/llms"

// QuestionPrompt asks for a short answer on "question".
const QuestionPrompt = `Question: {question}

Answer: Understand like highschool student and answer in a concise manner.`

// Question is a single-prompt chain on "question".
func Question(model llms.Model, opts ...llms.CallOption) *Chain {
	return New(NewPrompt(QuestionPrompt), model, opts...).Named("question")
}

// Sample inputs of the ready-made chains.
var (
	SampleQuestions = []string{
		"What is the capital of France?",
		"What is the largest mammal?",
		"What is the speed of light?",
		"What is the Fibonacci sequence?",
	}
	Planets  = []string{"mars", "venus"}
	Products = []string{"AI powered cars", "AI in healthcare"}
	Reviews  = []string{
		"Je trouve le goût médiocre. La mousse ne tient pas, c'est bizarre. J'achète les mêmes dans le commerce et le goût est bien meilleur... Vieux lot ou contrefaçon !?",
		"Das Produkt ist von schlechter Qualität. Es riecht komisch und funktioniert nicht richtig.",
	}
	RouterQuestions = []string{
		"What is black body radiation?",
		"what is (2*2)^4",
		"Why does every cell in our body contain DNA?",
		"How does glycogen generate energy?",
		"What is the Pythagorean theorem?",
		"Explain the theory of relativity.",
		"What is the capital of France?",
		"How do I write a for loop in Python?",
	}
)
