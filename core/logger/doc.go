// Package logger is a standardized event logging framework for the machine.
//
// Every event is wrapped in a LogEntry with exactly one event field populated
// and written as a single line of JSON.
package logger
