package kickapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Guliveer/kick-watcher-go/internal/constants"
)

func (c *Client) apiURL(path string) string {
	return c.baseURL + "/api" + path
}

func channelPath(channel string) string {
	return "/v2/channels/" + url.PathEscape(channel)
}

// LiveStreamDetails returns the current broadcast of channel. The returned
// response has a nil Data when the channel is offline.
func (c *Client) LiveStreamDetails(ctx context.Context, channel string) (*LiveStreamResponse, error) {
	var resp LiveStreamResponse
	if err := c.getJSON(ctx, c.apiURL(channelPath(channel)+"/livestream"), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChatRoom returns the chatroom of channel.
func (c *Client) ChatRoom(ctx context.Context, channel string) (*ChatRoom, error) {
	var room ChatRoom
	if err := c.getJSON(ctx, c.apiURL(channelPath(channel)+"/chatroom"), &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// ChatRoomSettings returns the detailed chatroom settings of channel.
func (c *Client) ChatRoomSettings(ctx context.Context, channel string) (*ChatRoomSettings, error) {
	var settings ChatRoomSettings
	u := c.apiURL("/internal/v1/channels/" + url.PathEscape(channel) + "/chatroom/settings")
	if err := c.getJSON(ctx, u, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Channel returns the channel record.
func (c *Client) Channel(ctx context.Context, channel string) (*Channel, error) {
	var ch Channel
	if err := c.getJSON(ctx, c.apiURL(channelPath(channel)), &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// CurrentViewers returns live viewer counts for the given livestream.
func (c *Client) CurrentViewers(ctx context.Context, livestreamID string) ([]CurrentViewers, error) {
	q := url.Values{}
	q.Add("ids[]", livestreamID)

	var viewers []CurrentViewers
	if err := c.getJSON(ctx, c.baseURL+"/current-viewers?"+q.Encode(), &viewers); err != nil {
		return nil, err
	}
	return viewers, nil
}

// Leaderboards returns the gift leaderboards of channel.
func (c *Client) Leaderboards(ctx context.Context, channel string) (*Leaderboards, error) {
	var lb Leaderboards
	if err := c.getJSON(ctx, c.apiURL(channelPath(channel)+"/leaderboards"), &lb); err != nil {
		return nil, err
	}
	return &lb, nil
}

// Categories returns the top-level categories.
func (c *Client) Categories(ctx context.Context) ([]CategoryRef, error) {
	var cats []CategoryRef
	if err := c.getJSON(ctx, c.apiURL("/v1/categories"), &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Subcategories returns one page of subcategories.
func (c *Client) Subcategories(ctx context.Context, page int) (*Page[Subcategory], error) {
	u := c.apiURL("/v1/subcategories")
	if page > 1 {
		u += "?page=" + strconv.Itoa(page)
	}

	var p Page[Subcategory]
	if err := c.getJSON(ctx, u, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TopCategories returns the most watched categories.
func (c *Client) TopCategories(ctx context.Context) ([]TopCategory, error) {
	var top []TopCategory
	if err := c.getJSON(ctx, c.apiURL("/v1/categories/top"), &top); err != nil {
		return nil, err
	}
	return top, nil
}

// FeaturedLivestreams returns featured livestreams for a region ("en" when empty).
func (c *Client) FeaturedLivestreams(ctx context.Context, region string) (*Page[FeaturedLivestream], error) {
	if region == "" {
		region = constants.DefaultRegion
	}

	var p Page[FeaturedLivestream]
	u := c.baseURL + "/stream/featured-livestreams/" + url.PathEscape(region)
	if err := c.getJSON(ctx, u, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
