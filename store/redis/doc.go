// Package redis stores chat history in Redis.
//
// Each session is a list of JSON encoded turns under
// "<prefix>history:<session>", and the set "<prefix>sessions" indexes the
// known sessions. With a TTL the list expires after the session has been
// idle for that long.
//
//	s := redis.New(redis.Options{Addr: "localhost:6379", TTL: 24 * time.Hour})
//	defer s.Close()
//	conv := chat.NewConversation(model, chat.WithStore(s))
package redis
