// Package chat holds multi-turn conversations with a chat model.
//
// A Conversation keeps a Session of turns, sends the whole history (or a
// window of it) with every question and optionally persists turns to a
// store.HistoryStore so a session can be resumed later:
//
//	conv := chat.New(model,
//		chat.WithSystem(chat.MayaSystemPrompt(time.Now())),
//		chat.WithStore(history),
//	)
//	answer, err := conv.Send(ctx, "What is my name?")
//
// UseCases lists scripted message sequences (tutoring, few-shot
// classification, ...) that show how system, human and AI messages shape a
// reply.
package chat
