// Command storyreaper lists stories and purges the ones past the 24 hour window.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"minisocial/internal/config"
	"minisocial/internal/media"
	"minisocial/internal/social"
	"minisocial/internal/store"
)

const reaperDoc = `MiniSocial Story Reaper

Usage:
  storyreaper -i
  storyreaper -purge
  storyreaper -h
Options:
  -h            Show this screen.
  -i            Dump all stories, their authors and whether they are active to STDOUT.
  -purge        Delete expired stories and their media files.`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(reaperDoc)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't load configuration: %s\n", err)
		os.Exit(1)
	}
	log := cfg.NewLogger()

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't open database: %s\n", err)
		os.Exit(1)
	}
	defer st.Close()

	mediaStore, err := media.NewDiskStore(cfg.UploadDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't open upload dir: %s\n", err)
		os.Exit(1)
	}

	svc := social.NewService(st, nil, social.WithLogger(log), social.WithMedia(mediaStore))
	if err := run(ctx, os.Args[1], os.Stdout, st, svc, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		st.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, out io.Writer, st social.Store, svc *social.Service, now time.Time) error {
	switch cmd {
	case "-h":
		fmt.Fprintln(out, reaperDoc)
	case "-i":
		stories, err := st.StoriesSince(ctx, time.Time{})
		if err != nil {
			return fmt.Errorf("SQL error: %w", err)
		}
		for _, s := range stories {
			state := "expired"
			if s.Active(now) {
				state = "active"
			}
			fmt.Fprintf(out, "%d,%s,%s,%s\n", s.ID, s.Username, s.MediaFilename, state)
		}
	case "-purge":
		purged, err := svc.PurgeExpiredStories(ctx)
		if err != nil {
			return fmt.Errorf("SQL error: %w", err)
		}
		for _, s := range purged {
			fmt.Fprintf(out, "Purged story: %d\n", s.ID)
		}
	default:
		return fmt.Errorf("unknown option %q\n\n%s", cmd, reaperDoc)
	}
	return nil
}
