package archiver

import (
	"context"
	"io"

	"vinearchive/pkg/vine"
)

// VineClient defines the Vine operations the archiver needs
type VineClient interface {
	ResolveProfile(ctx context.Context, token string) (*vine.Profile, error)
	FetchUserInfo(ctx context.Context, userID string) vine.UserInfo
	FetchPost(ctx context.Context, postID vine.PostID) (*vine.Post, error)
	OpenAsset(ctx context.Context, url string) (io.ReadCloser, error)
}
