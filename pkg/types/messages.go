package types

// Client -> Server (websocket, JSON text frames)
// DrawNext: {}
//   select the next team for the lowest-filled group; the server seats it
//   after the reveal delay
//
// CompleteDraw: {}
//   seat every remaining team at once
//
// ToggleAuto: {}
//   draw one team per auto interval until the draw is finished
//
// Restart: {}
//   throw away the current draw and start a fresh one (hosts pre-seated)

// Server -> Client
// StateSnapshot: see snapshot.go
//
// Error:
//   error: string   // e.g. "a drawn team is still awaiting assignment"
