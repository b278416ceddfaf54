// Package vine provides a client for the Vine archive mirror and the live
// profile service.
//
// The archive serves immutable profile and post records as JSON, while the
// live service maps vanity names to user IDs and supplies auxiliary profile
// details such as follower counts.
//
// Every failure is returned as a *errors.Error whose chain also matches
// errors.ErrLookupFailed (vanity resolution) or errors.ErrFetchFailed
// (archive reads), so callers can branch with errors.Is.
//
// Example usage:
//
//	client := vine.NewClient(&cfg.Vine, cfg.Download.Timeout, log)
//
//	profile, err := client.ResolveProfile(ctx, "testuser")
//	if errors.Is(err, errors.ErrLookupFailed) {
//	    // the vanity name is unknown
//	}
//
//	for _, id := range profile.Posts {
//	    post, err := client.FetchPost(ctx, id)
//	    // ...
//	}
package vine
