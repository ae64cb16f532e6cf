// Package activity watches the Taskwarrior data files and answers the two
// questions the scheduler asks on every tick: how long ago did any watched
// file change, and how many changes are still waiting to be synced.
//
// Every call goes back to the filesystem. Nothing is cached between ticks.
package activity
