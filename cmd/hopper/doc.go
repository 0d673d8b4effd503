// Command hopper is the CLI for the hopper conversion workflow: scan an
// archive, convert its groups, browse and download the output, and clean up
// the backend session.
package main
