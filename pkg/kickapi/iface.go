package kickapi

import "context"

// Resolver is the metadata interface needed by a chat connection.
// *Client satisfies this interface.
type Resolver interface {
	LiveStreamDetails(ctx context.Context, channel string) (*LiveStreamResponse, error)
	ChatRoom(ctx context.Context, channel string) (*ChatRoom, error)
	Channel(ctx context.Context, channel string) (*Channel, error)
	CurrentViewers(ctx context.Context, livestreamID string) ([]CurrentViewers, error)
}

// Directory is the browsing interface used by the CLI.
// *Client satisfies this interface.
type Directory interface {
	ChatRoomSettings(ctx context.Context, channel string) (*ChatRoomSettings, error)
	Leaderboards(ctx context.Context, channel string) (*Leaderboards, error)
	Categories(ctx context.Context) ([]CategoryRef, error)
	Subcategories(ctx context.Context, page int) (*Page[Subcategory], error)
	TopCategories(ctx context.Context) ([]TopCategory, error)
	FeaturedLivestreams(ctx context.Context, region string) (*Page[FeaturedLivestream], error)
}

var (
	_ Resolver  = (*Client)(nil)
	_ Directory = (*Client)(nil)
)
