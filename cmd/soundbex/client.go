package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"soundbex/internal/core"
	"soundbex/pkg/soundbex"
)

const clientTimeout = 2 * time.Minute

func newAPIClient() *soundbex.Client {
	return soundbex.NewClient(config.Client.APIURL, nil)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), clientTimeout)
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search songs on a running server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			query := strings.Join(args, " ")
			res, err := newAPIClient().Search(ctx, query)
			if err != nil {
				return err
			}

			printSongs(cmd.OutOrStdout(), res.Result)
			return nil
		},
	}
}

func newStreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stream <videoId>",
		Short: "Resolve a playable audio URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			stream, err := newAPIClient().Stream(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "url:    %s\n", stream.StreamURL)
			fmt.Fprintf(out, "type:   %s\n", stream.Type)
			fmt.Fprintf(out, "source: %s\n", stream.Source)
			if stream.Bitrate != nil {
				fmt.Fprintf(out, "bitrate: %d kbps\n", *stream.Bitrate)
			}
			if stream.Format != nil {
				fmt.Fprintf(out, "format: %s\n", *stream.Format)
			}
			if stream.Fallback() {
				fmt.Fprintln(out, "warning: no direct audio found, URL is the watch page")
			}
			return nil
		},
	}
}

func newSongCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "song <videoId>",
		Short: "Show metadata of a single video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			song, err := newAPIClient().Song(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s - %s [%s] %s\n", song.Artist, song.Title, song.Duration, song.VideoID)
			return nil
		},
	}
}

func newPlaylistCmd() *cobra.Command {
	playlistCmd := &cobra.Command{
		Use:   "playlist",
		Short: "Create and navigate server-side playlists",
	}

	playlistCmd.AddCommand(&cobra.Command{
		Use:   "create <videoId>...",
		Short: "Create a playlist from video ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			client := newAPIClient()
			songs := make([]core.SongEntry, 0, len(args))
			for _, id := range args {
				song, err := client.Song(ctx, id)
				if err != nil {
					return fmt.Errorf("lookup %s: %w", id, err)
				}
				entry := core.SongEntry{
					Title:    song.Title,
					Artist:   song.Artist,
					Duration: song.Duration,
					VideoID:  song.VideoID,
				}
				if song.Thumbnail != nil {
					entry.Thumbnail = *song.Thumbnail
				}
				songs = append(songs, entry)
			}

			created, err := client.CreatePlaylist(ctx, songs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d songs)\n", created.PlaylistID, created.TotalSongs)
			return nil
		},
	})

	for _, op := range []string{"next", "previous", "current"} {
		playlistCmd.AddCommand(newPlaylistNavCmd(op))
	}

	return playlistCmd
}

func newPlaylistNavCmd(op string) *cobra.Command {
	return &cobra.Command{
		Use:   op + " <playlistId>",
		Short: fmt.Sprintf("Show the %s song of a playlist", op),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			client := newAPIClient()
			move := map[string]func(context.Context, string) (*soundbex.PlaylistState, error){
				"next":     client.Next,
				"previous": client.Previous,
				"current":  client.Current,
			}[op]

			state, err := move(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d %s - %s (%s) next=%t previous=%t\n",
				state.CurrentIndex+1, state.TotalSongs, state.Song.Artist, state.Song.Title,
				state.Song.VideoID, state.HasNext, state.HasPrevious)
			return nil
		},
	}
}

func printSongs(w io.Writer, songs []soundbex.Song) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VIDEO ID\tDURATION\tAUTHOR\tTITLE")
	for _, s := range songs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.VideoID, s.Duration, s.Author, s.Title)
	}
	_ = tw.Flush()
}
