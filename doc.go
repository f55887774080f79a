// Package jobboard is the Composition Root for the job application board.
//
// It connects the board synchronization engine (pkg/core) with the REST
// remote and the local snapshot store using the Hexagonal Architecture
// pattern.
//
// Philosophy:
//
// The server is the source of truth. The board is a local projection of
// the last list the server returned, bucketed by stage. Moves are applied
// optimistically and rolled back when the server refuses them, so the
// board never disagrees with the server for longer than one request.
//
// Features:
//
//   - **Optimistic Moves**: Drop a card on another column and keep working; a rejected move restores the card.
//   - **Latest-Wins Filtering**: Server-side filters where only the newest request may load the board.
//   - **Edit Sessions**: Notes and documents are diffed against the loaded job, so removals are never guessed.
//   - **Guarded Deletes**: A two-step confirmation gate in front of every delete.
//   - **Offline Snapshot**: The last loaded board is kept on disk and can be watched for changes.
//   - **Extensible**: Any backend that satisfies `core.Remote` can replace the REST client.
//
// Usage:
//
//	svc, err := jobboard.New("https://jobs.example.com",
//		jobboard.WithSessionCookie("", cookie),
//		jobboard.WithLogger(logger),
//	)
//
//	if _, err := svc.Start(ctx); err != nil { ... }
//	t, err := svc.Drop(ctx, 42, core.StageInterviewing)
//	_ = t.Wait(ctx)
package jobboard
