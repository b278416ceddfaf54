// Package summary renders the human-readable info files written next to the
// archived media: one for the user and one per post.
package summary
