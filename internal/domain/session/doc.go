// Package session implements the lock screen and power state machine of the
// simulated desktop.
//
// Phases:
//   - locked: lock screen, no windows are shown or interactable
//   - unlocked: desktop with windows, dock and menus
//   - shutting_down: transient, resolves to shutdown after a fixed delay
//   - shutdown: blank screen, power-on returns to locked
//   - restarting: transient, resolves to locked after a fixed delay
//
// Transitions:
//
//	locked --unlock (login delay)--> unlocked
//	unlocked --lock--> locked
//	unlocked --shutdown--> shutting_down --(delay)--> shutdown --power on--> locked
//	locked|unlocked --restart--> restarting --(delay)--> locked
//
// While a login, shutdown or restart delay is running every other transition
// is refused. There is no credential check: a login always succeeds.
//
// Example Usage:
//
//	m := session.NewMachine(clock.Real{}, session.DefaultDelays(), func(from, to session.Phase) {
//		log.Printf("%s -> %s", from, to)
//	})
//	m.PressKey(session.KeyEnter) // starts the login
package session
