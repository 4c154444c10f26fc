package kickapi

import "encoding/json"

// Image is a responsive image reference.
type Image struct {
	Src    string `json:"src"`
	Srcset string `json:"srcset"`
}

// CategoryRef is the short category record.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon,omitempty"`
}

// Subcategory is a game/category entry with live viewer totals.
type Subcategory struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Tags        []string        `json:"tags"`
	Description *string         `json:"description"`
	DeletedAt   *string         `json:"deleted_at"`
	Viewers     int             `json:"viewers"`
	Banner      json.RawMessage `json:"banner,omitempty"`
	Category    json.RawMessage `json:"category,omitempty"`
}

// LiveStream describes the current broadcast of a channel.
type LiveStream struct {
	ID           int64  `json:"id"`
	Slug         string `json:"slug"`
	SessionTitle string `json:"session_title"`
	CreatedAt    string `json:"created_at"`
	Language     string `json:"language"`
	IsMature     bool   `json:"is_mature"`
	Viewers      int    `json:"viewers"`
	Category     *struct {
		ID             int64           `json:"id"`
		Name           string          `json:"name"`
		Slug           string          `json:"slug"`
		Tags           json.RawMessage `json:"tags,omitempty"`
		ParentCategory json.RawMessage `json:"parent_category,omitempty"`
	} `json:"category"`
	PlaybackURL string `json:"playback_url"`
	Thumbnail   Image  `json:"thumbnail"`
}

// LiveStreamResponse wraps LiveStream. Data is nil when the channel is offline.
type LiveStreamResponse struct {
	Data *LiveStream `json:"data"`
}

// IsLive reports whether the response carries an active stream.
func (r *LiveStreamResponse) IsLive() bool {
	return r != nil && r.Data != nil
}

// Toggle is a boolean chatroom setting.
type Toggle struct {
	Enabled bool `json:"enabled"`
}

// ChatRoom is the chatroom attached to a channel.
type ChatRoom struct {
	ID       int64 `json:"id"`
	SlowMode struct {
		Enabled         bool `json:"enabled"`
		MessageInterval int  `json:"message_interval"`
	} `json:"slow_mode"`
	SubscribersMode Toggle `json:"subscribers_mode"`
	FollowersMode   struct {
		Enabled     bool `json:"enabled"`
		MinDuration int  `json:"min_duration"`
	} `json:"followers_mode"`
	EmotesMode            Toggle `json:"emotes_mode"`
	AdvancedBotProtection struct {
		Enabled       bool `json:"enabled"`
		RemainingTime int  `json:"remaining_time"`
	} `json:"advanced_bot_protection"`
	PinnedMessage     json.RawMessage `json:"pinned_message"`
	ShowQuickEmotes   Toggle          `json:"show_quick_emotes"`
	ShowBanners       Toggle          `json:"show_banners"`
	GiftsEnabled      Toggle          `json:"gifts_enabled"`
	GiftsWeekEnabled  Toggle          `json:"gifts_week_enabled"`
	GiftsMonthEnabled Toggle          `json:"gifts_month_enabled"`
}

// ChatRoomSettings is the moderator view of chatroom settings.
type ChatRoomSettings struct {
	Status struct {
		Error   bool   `json:"error"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Data struct {
		Settings map[string]any `json:"settings"`
	} `json:"data"`
}

// ChannelLivestream is the livestream record nested in Channel.
type ChannelLivestream struct {
	ID           int64           `json:"id"`
	Slug         string          `json:"slug"`
	ChannelID    int64           `json:"channel_id"`
	CreatedAt    string          `json:"created_at"`
	SessionTitle string          `json:"session_title"`
	IsLive       bool            `json:"is_live"`
	StartTime    string          `json:"start_time"`
	Duration     int             `json:"duration"`
	Language     string          `json:"language"`
	IsMature     bool            `json:"is_mature"`
	ViewerCount  int             `json:"viewer_count"`
	Categories   []Subcategory   `json:"categories"`
	Tags         json.RawMessage `json:"tags,omitempty"`
}

// Channel is the public channel record.
type Channel struct {
	ID                  int64              `json:"id"`
	UserID              int64              `json:"user_id"`
	Slug                string             `json:"slug"`
	IsBanned            bool               `json:"is_banned"`
	PlaybackURL         string             `json:"playback_url"`
	VodEnabled          bool               `json:"vod_enabled"`
	SubscriptionEnabled bool               `json:"subscription_enabled"`
	FollowersCount      int                `json:"followers_count"`
	Verified            bool               `json:"verified"`
	Muted               bool               `json:"muted"`
	CanHost             bool               `json:"can_host"`
	Livestream          *ChannelLivestream `json:"livestream"`
	SubscriberBadges    json.RawMessage    `json:"subscriber_badges,omitempty"`
	BannerImage         *struct {
		URL string `json:"url"`
	} `json:"banner_image"`
	RecentCategories []Subcategory `json:"recent_categories"`
	User             struct {
		ID         int64  `json:"id"`
		Username   string `json:"username"`
		Bio        string `json:"bio"`
		Country    string `json:"country"`
		ProfilePic string `json:"profile_pic"`
	} `json:"user"`
	Chatroom struct {
		ID              int64  `json:"id"`
		ChannelID       int64  `json:"channel_id"`
		ChatMode        string `json:"chat_mode"`
		SlowMode        bool   `json:"slow_mode"`
		FollowersMode   bool   `json:"followers_mode"`
		SubscribersMode bool   `json:"subscribers_mode"`
		EmotesMode      bool   `json:"emotes_mode"`
		MessageInterval int    `json:"message_interval"`
	} `json:"chatroom"`
}

// CurrentViewers is one entry of the current-viewers endpoint.
type CurrentViewers struct {
	LivestreamID int64 `json:"livestream_id"`
	Viewers      int   `json:"viewers"`
}

// LeaderboardEntry is one gifter.
type LeaderboardEntry struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Quantity int    `json:"quantity"`
}

// Leaderboards are the gift leaderboards of a channel.
type Leaderboards struct {
	Gifts             []LeaderboardEntry `json:"gifts"`
	GiftsEnabled      bool               `json:"gifts_enabled"`
	GiftsWeek         []LeaderboardEntry `json:"gifts_week"`
	GiftsWeekEnabled  bool               `json:"gifts_week_enabled"`
	GiftsMonth        []LeaderboardEntry `json:"gifts_month"`
	GiftsMonthEnabled bool               `json:"gifts_month_enabled"`
}

// Page is the pagination envelope used by list endpoints.
type Page[T any] struct {
	CurrentPage int     `json:"current_page"`
	Data        []T     `json:"data"`
	From        int     `json:"from"`
	To          int     `json:"to"`
	Total       int     `json:"total"`
	PerPage     int     `json:"per_page"`
	LastPage    int     `json:"last_page"`
	NextPageURL *string `json:"next_page_url"`
	PrevPageURL *string `json:"prev_page_url"`
	Path        string  `json:"path"`
}

// TopCategory is an entry of the top categories list.
type TopCategory struct {
	Subcategory
	Banner   Image       `json:"banner"`
	Category CategoryRef `json:"category"`
}

// FeaturedLivestream is an entry of the featured livestreams list.
type FeaturedLivestream struct {
	ID           int64           `json:"id"`
	Slug         string          `json:"slug"`
	ChannelID    int64           `json:"channel_id"`
	CreatedAt    string          `json:"created_at"`
	SessionTitle string          `json:"session_title"`
	IsLive       bool            `json:"is_live"`
	StartTime    string          `json:"start_time"`
	Duration     int             `json:"duration"`
	Language     string          `json:"language"`
	IsMature     bool            `json:"is_mature"`
	ViewerCount  int             `json:"viewer_count"`
	Viewers      int             `json:"viewers"`
	Order        int             `json:"order"`
	Thumbnail    json.RawMessage `json:"thumbnail,omitempty"`
	Channel      json.RawMessage `json:"channel,omitempty"`
	Categories   json.RawMessage `json:"categories,omitempty"`
}
