package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"storybook-media-api/internal/infrastructure/persistence/postgres"
)

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

func newPicturesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pictures",
		Short: "Generate page illustrations for a book",
	}

	var replace bool
	generate := &cobra.Command{
		Use:   "generate <book-id>",
		Short: "Illustrate every page of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(svc mediaOps) error {
				out, err := svc.GenerateAllPictures(cmd.Context(), bookID, replace)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderOutcome(bookID, "generate", out))
				return nil
			})
		},
	}
	generate.Flags().BoolVar(&replace, "replace", false, "Regenerate pages that already have an illustration")

	retry := &cobra.Command{
		Use:   "retry <book-id>",
		Short: "Illustrate only pages without an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(svc mediaOps) error {
				out, err := svc.RetryFailedPictures(cmd.Context(), bookID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderOutcome(bookID, "retry", out))
				return nil
			})
		},
	}

	cmd.AddCommand(generate, retry)
	return cmd
}

func newPageCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Single page operations",
	}

	keep := false
	picture := &cobra.Command{
		Use:   "picture <page-id>",
		Short: "Generate the illustration of one page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID, err := parseID("page", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(svc mediaOps) error {
				outcome, err := svc.GeneratePicture(cmd.Context(), pageID, !keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "page %d: %s\n", pageID, outcome)
				return nil
			})
		},
	}
	picture.Flags().BoolVar(&keep, "keep-existing", false, "Skip the page if it already has an illustration")

	cmd.AddCommand(picture)
	return cmd
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Book narration",
	}

	var voice, format string
	generate := &cobra.Command{
		Use:   "generate <book-id>",
		Short: "Narrate the whole book into one audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(svc mediaOps) error {
				asset, err := svc.GenerateFullAudio(cmd.Context(), bookID, voice, format)
				if err != nil {
					return err
				}
				if asset == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "book %d: no audio generated\n", bookID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "book %d: %s (%d bytes)\n", bookID, asset.ContentType, asset.SizeBytes)
				return nil
			})
		},
	}
	generate.Flags().StringVar(&voice, "voice", "", "Voice name (default from config)")
	generate.Flags().StringVar(&format, "format", "", "Audio format (default from config)")

	playlist := &cobra.Command{
		Use:   "playlist <book-id>",
		Short: "List page narration of a published book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(svc mediaOps) error {
				entries, err := svc.AudioPlaylist(cmd.Context(), bookID)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(e.PageID, 10),
						e.ChapterTitle,
						e.ContentType,
						e.URL,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Page", "Chapter", "Type", "URL"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	var output string
	download := &cobra.Command{
		Use:   "download <book-id>",
		Short: "Save the full audio of a published book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(svc mediaOps) error {
				rc, asset, err := svc.OpenBookAudio(cmd.Context(), bookID)
				if err != nil {
					return err
				}
				defer rc.Close()

				f, err := os.Create(output)
				if err != nil {
					return err
				}
				n, err := io.Copy(f, rc)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d bytes)\n", output, asset.ContentType, n)
				return nil
			})
		},
	}
	download.Flags().StringVarP(&output, "output", "o", "book-audio", "Output file path")

	cmd.AddCommand(generate, playlist, download)
	return cmd
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <book-id>",
		Short: "Narrate and publish a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(svc mediaOps) error {
				res, err := svc.Publish(cmd.Context(), bookID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Book", "Status", "Narrated Pages", "Full Audio"},
					[][]string{{
						strconv.FormatInt(res.Book.ID, 10),
						string(res.Book.Status),
						strconv.Itoa(res.NarratedPages),
						yesNo(res.Audio != nil),
					}},
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <book-id>",
		Short: "Archive a published book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(svc mediaOps) error {
				book, err := svc.Archive(cmd.Context(), bookID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "book %d: %s\n", book.ID, book.Status)
				return nil
			})
		},
	}
}

func newUnarchiveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive <book-id>",
		Short: "Return an archived book to draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(svc mediaOps) error {
				book, err := svc.Unarchive(cmd.Context(), bookID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "book %d: %s\n", book.ID, book.Status)
				return nil
			})
		},
	}
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := postgres.NewClient(&cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer client.Close()
			if err := client.AutoMigrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
