package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Guliveer/kick-watcher-go/internal/constants"
	"github.com/Guliveer/kick-watcher-go/pkg/kickapi"
)

// kickTimeLayout is the timestamp format of Kick's REST responses.
const kickTimeLayout = "2006-01-02 15:04:05"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newInfoCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info [channel]",
		Short: "Show channel, chatroom and live stream details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := a.channelArg(args)
			if err != nil {
				return err
			}

			snap, err := kickapi.TakeSnapshot(cmd.Context(), a.apiClient(), ch)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			writeSnapshot(cmd.OutOrStdout(), snap, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw snapshot as JSON")
	return cmd
}

func newViewersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "viewers [channel]",
		Short: "Print the current viewer count",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := a.channelArg(args)
			if err != nil {
				return err
			}

			client := a.apiClient()
			live, err := client.LiveStreamDetails(cmd.Context(), ch)
			if err != nil {
				return err
			}
			if !live.IsLive() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is offline\n", ch)
				return nil
			}

			viewers, err := client.CurrentViewers(cmd.Context(), strconv.FormatInt(live.Data.ID, 10))
			if err != nil {
				return err
			}
			count := live.Data.Viewers
			if len(viewers) > 0 {
				count = viewers[0].Viewers
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s viewers\n", ch, humanize.Comma(int64(count)))
			return nil
		},
	}
}

func newCategoriesCmd(a *app) *cobra.Command {
	var (
		page int
		top  bool
		list bool
	)

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories by live viewers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := a.apiClient()
			out := cmd.OutOrStdout()

			switch {
			case list:
				cats, err := client.Categories(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(cats))
				for _, c := range cats {
					rows = append(rows, []string{c.Name, c.Slug})
				}
				fmt.Fprintln(out, renderTable([]string{"Category", "Slug"}, rows))
			case top:
				cats, err := client.TopCategories(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderTable([]string{"Name", "Parent", "Viewers"}, topCategoryRows(cats)))
			default:
				p, err := client.Subcategories(cmd.Context(), page)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderTable([]string{"Name", "Slug", "Viewers"}, subcategoryRows(p.Data)))
				fmt.Fprintf(out, "page %d of %d\n", p.CurrentPage, p.LastPage)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page of the subcategory listing")
	cmd.Flags().BoolVar(&top, "top", false, "Show the top categories instead")
	cmd.Flags().BoolVar(&list, "list", false, "Show the top-level categories")
	cmd.MarkFlagsMutuallyExclusive("top", "list")
	return cmd
}

func newFeaturedCmd(a *app) *cobra.Command {
	var (
		region string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured live streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.apiClient().FeaturedLivestreams(cmd.Context(), region)
			if err != nil {
				return err
			}

			streams := p.Data
			if limit > 0 && len(streams) > limit {
				streams = streams[:limit]
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Channel", "Title", "Viewers", "Lang"}, featuredRows(streams)))
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", constants.DefaultRegion, "Region of the featured list")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of streams to show (0 for all)")
	return cmd
}

func writeSnapshot(w io.Writer, snap *kickapi.Snapshot, now time.Time) {
	ch := snap.Channel
	fmt.Fprintf(w, "Channel:    %s (%s)\n", ch.Slug, ch.User.Username)
	fmt.Fprintf(w, "Followers:  %s\n", humanize.Comma(int64(ch.FollowersCount)))
	fmt.Fprintf(w, "Verified:   %t\n", ch.Verified)
	fmt.Fprintf(w, "Chatroom:   %d%s\n", snap.ChatRoom.ID, chatModes(snap.ChatRoom))

	if !snap.IsLive() {
		fmt.Fprintln(w, "Status:     offline")
		return
	}

	live := snap.LiveStream
	fmt.Fprintln(w, "Status:     live")
	fmt.Fprintf(w, "Title:      %s\n", live.SessionTitle)
	if live.Category != nil {
		fmt.Fprintf(w, "Category:   %s\n", live.Category.Name)
	}
	fmt.Fprintf(w, "Started:    %s\n", startedAgo(live.CreatedAt, now))

	viewers := live.Viewers
	if snap.Viewers != nil {
		viewers = snap.Viewers.Viewers
	}
	fmt.Fprintf(w, "Viewers:    %s\n", humanize.Comma(int64(viewers)))
}

func chatModes(room *kickapi.ChatRoom) string {
	var modes []string
	if room.SlowMode.Enabled {
		modes = append(modes, fmt.Sprintf("slow %ds", room.SlowMode.MessageInterval))
	}
	if room.FollowersMode.Enabled {
		modes = append(modes, "followers")
	}
	if room.SubscribersMode.Enabled {
		modes = append(modes, "subscribers")
	}
	if room.EmotesMode.Enabled {
		modes = append(modes, "emotes")
	}
	if len(modes) == 0 {
		return ""
	}
	return " [" + strings.Join(modes, ", ") + "]"
}

func startedAgo(createdAt string, now time.Time) string {
	t, err := time.Parse(kickTimeLayout, createdAt)
	if err != nil {
		return createdAt
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func topCategoryRows(cats []kickapi.TopCategory) [][]string {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c.Name, c.Category.Name, humanize.Comma(int64(c.Viewers))})
	}
	return rows
}

func subcategoryRows(cats []kickapi.Subcategory) [][]string {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c.Name, c.Slug, humanize.Comma(int64(c.Viewers))})
	}
	return rows
}

func featuredRows(streams []kickapi.FeaturedLivestream) [][]string {
	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		rows = append(rows, []string{
			featuredChannel(s),
			truncate(s.SessionTitle, 48),
			humanize.Comma(int64(s.Viewers)),
			s.Language,
		})
	}
	return rows
}

// featuredChannel reads the channel slug from the nested channel record,
// falling back to the livestream slug.
func featuredChannel(s kickapi.FeaturedLivestream) string {
	var ch struct {
		Slug string `json:"slug"`
	}
	if len(s.Channel) > 0 && json.Unmarshal(s.Channel, &ch) == nil && ch.Slug != "" {
		return ch.Slug
	}
	return s.Slug
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}
