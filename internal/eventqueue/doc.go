// Package eventqueue turns live posts and drafts into the moderation queue:
// records are normalized into one Item shape, then filtered and ordered.
//
// Every function here is pure. The REST server runs it over stored posts and
// the admin client runs it over fetched collections, so both produce the same
// queue for the same criteria.
package eventqueue
