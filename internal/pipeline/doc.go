// Package pipeline orchestrates a tagdict run as a sequence of steps.
//
// A Pipeline executes Steps in order over a shared *Run. The Runner builds
// one pipeline per source language, runs them concurrently, and then joins
// their results into the dictionary and the run history.
package pipeline
