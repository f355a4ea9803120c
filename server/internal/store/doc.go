// Package store holds the latest prediction snapshot per vessel in memory.
// Entries expire after a TTL so vessels whose agent went silent drop off the
// fleet view. Persistent history lives in package history.
package store
