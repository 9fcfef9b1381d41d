// Package todo manages todo items owned by users.
//
// Titles are unique per owner (exact match). Every operation accepts an
// optional owner id; when it is set, items of other owners behave as if they
// did not exist.
package todo
