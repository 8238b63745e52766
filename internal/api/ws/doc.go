// Package ws streams a desktop over a WebSocket connection.
//
// The server pushes a view frame whenever the desktop changes, including
// changes made by timers or other clients. Clients send commands on the same
// connection. Frames are JSON, encoded with sonic.
//
// Message Types (Client → Server):
//   - command: dispatch {"command": {...}} to the desktop
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - system: connection established
//   - view: current desktop view
//   - error: refused command, with the unchanged view
//   - pong: reply to ping
//
// Example Usage:
//
//	handler := ws.NewHandler(desktops, metrics, logger, origins)
//	router.GET("/desktops/:id/stream", handler.HandleConnection)
package ws
