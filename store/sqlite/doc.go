// Package sqlite keeps chat history in a local SQLite file.
//
// It is the zero-infrastructure option of the langlab history stores: the
// chat command uses it when --history points at a .db file.
//
//	s, err := sqlite.New(sqlite.Options{Path: "./history.db"})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	_ = s.Append(ctx, "session-1", store.Turn{Role: store.RoleHuman, Text: "hi"})
//	turns, _ := s.Load(ctx, "session-1")
//
// Use ":memory:" as Path for a throwaway database.
package sqlite
