// Package session implements the conversion workflow stage machine.
//
// A Session owns exactly one workflow at a time: the backend session
// identity, the scanned groups, the converted file listing, the active
// group/file selection, and the preview cache. Stages advance
// Idle -> Scanned -> Converted and tear down through Cleanup or Reset.
// Browsing converted output never leaves the Converted stage.
//
// State survives process restarts through a JSON snapshot in the state
// directory, so each CLI invocation resumes where the previous one left
// off. Reset deletes the snapshot and bumps the epoch; async work that
// started before the reset discards its mutations when it lands.
package session
