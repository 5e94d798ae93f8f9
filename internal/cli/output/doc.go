// Package output provides output formatting for the SecureSnap CLI.
//
// Two formats are supported: a human-readable key-value table
// (default) and machine-readable JSON for scripting.
package output
