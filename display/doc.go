// Package display draws the task list: it measures the terminal, clears it,
// prints a one-line status and runs the task command underneath.
package display
