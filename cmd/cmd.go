// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml from the built-in template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// videosCommand handles the channel video catalog
func videosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "videos",
		Aliases: []string{"v"},
		Usage:   "Channel video operations",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Fetch channel uploads from the YouTube Data API and store them",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "channel",
						Usage: "Channel ID (defaults to credentials.youtube.channel_id)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of uploads to fetch, 0 for all",
						Value: 0,
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Hide progress lines",
					},
				},
				Action: r.VideosSync,
			},
			{
				Name:  "list",
				Usage: "List stored videos",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "tag",
						Usage: "Only videos carrying this tag name",
					},
				}, jsonFlags()...),
				Action: r.VideosList,
			},
		},
	}
}

// setlistCommand handles setlist extraction from viewer comments
func setlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "setlist",
		Aliases: []string{"sl"},
		Usage:   "Setlist extraction from timestamp comments",
		Commands: []*cli.Command{
			{
				Name:  "extract",
				Usage: "Extract setlists for stored videos",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "tag",
						Usage: "Only videos carrying this tag name (e.g. 歌枠, ライブ)",
					},
					&cli.StringSliceFlag{
						Name:  "video",
						Usage: "Stored video ID to extract, repeatable",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Extract without storing setlists or songs",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the extracted setlists to a CSV file",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Write the CSV into this directory named after --tag (extracted_songs_stream.csv for 歌枠)",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Hide progress lines",
					},
				}, jsonFlags()...),
				Action: r.SetlistExtract,
			},
			{
				Name:  "show",
				Usage: "Print the stored setlist of a video",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "video"},
				},
				Flags:  jsonFlags(),
				Action: r.SetlistShow,
			},
		},
	}
}

// tagsCommand handles the tag vocabulary and title classification
func tagsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "Stream tag classification",
		Commands: []*cli.Command{
			{
				Name:  "classify",
				Usage: "Classify every stored video against the tag vocabulary",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Classify without storing tags",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the classification to a CSV file",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Hide progress lines",
					},
				},
				Action: r.TagsClassify,
			},
			{
				Name:  "explain",
				Usage: "Show which tags a title would receive and why",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "started-at",
						Usage: "Stream start time (RFC 3339)",
					},
					&cli.StringFlag{
						Name:  "duration",
						Usage: "Stream length as HH:MM:SS",
					},
				}, jsonFlags()...),
				Action: r.TagsExplain,
			},
			{
				Name:  "export",
				Usage: "Export stored video tags as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path, stdout when empty",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Write a timestamped export into this directory and link latest.csv to it",
					},
				},
				Action: r.TagsExport,
			},
			{
				Name:   "list",
				Usage:  "List the tag vocabulary",
				Flags:  jsonFlags(),
				Action: r.TagsList,
			},
			{
				Name:  "add",
				Usage: "Add a tag name to the vocabulary",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.TagsAdd,
			},
		},
	}
}

// artistCommand handles catalog artist resolution
func artistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artist",
		Usage: "Song artist resolution against the Spotify catalog",
		Commands: []*cli.Command{
			{
				Name:  "resolve",
				Usage: "Resolve the original artist of a song title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags:  jsonFlags(),
				Action: r.ArtistResolve,
			},
			{
				Name:  "update",
				Usage: "Resolve every song whose artist is still pending",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of songs to process, 0 for all",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Resolve without storing artists",
					},
					&cli.StringFlag{
						Name:  "report-dir",
						Usage: "Directory for the updated / not found CSV reports, none when empty",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Hide progress lines",
					},
				},
				Action: r.ArtistUpdate,
			},
		},
	}
}

// songsCommand handles the song catalog
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Song catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List songs found in setlists",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "pending",
						Usage: "Only songs whose artist is unresolved",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the list to a CSV file",
					},
				}, jsonFlags()...),
				Action: r.SongsList,
			},
		},
	}
}
