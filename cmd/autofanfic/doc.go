// The autofanfic command drives the story-watching daemon from a terminal.
//
// Most subcommands are thin translations onto the daemon's Unix-socket RPC
// surface; spool subcommands additionally know how to open the database
// directly so inspection and retry keep working while the daemon is down.
// Configuration resolution and socket discovery live in one shared context
// so every subcommand agrees on which installation it is talking to.
package main
