package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"storybook-media-api/internal/application/media"
	"storybook-media-api/internal/config"
	"storybook-media-api/internal/domain/entity"
	apperrors "storybook-media-api/pkg/errors"
)

type fakeOps struct {
	replace  *bool
	outcome  media.BatchOutcome
	archived bool
}

func (f *fakeOps) GenerateAllPictures(_ context.Context, _ int64, replace bool) (media.BatchOutcome, error) {
	f.replace = &replace
	return f.outcome, nil
}

func (f *fakeOps) RetryFailedPictures(context.Context, int64) (media.BatchOutcome, error) {
	return f.outcome, nil
}

func (f *fakeOps) GeneratePicture(_ context.Context, _ int64, replace bool) (media.Outcome, error) {
	f.replace = &replace
	return media.OutcomeGenerated, nil
}

func (f *fakeOps) GenerateFullAudio(context.Context, int64, string, string) (*entity.Asset, error) {
	return nil, nil
}

func (f *fakeOps) Publish(_ context.Context, id int64) (*media.PublishResult, error) {
	return &media.PublishResult{
		Book:          &entity.Book{ID: id, Status: entity.BookStatusPublished},
		Audio:         &entity.Asset{ContentType: "audio/mpeg"},
		NarratedPages: 3,
	}, nil
}

func (f *fakeOps) Archive(_ context.Context, id int64) (*entity.Book, error) {
	f.archived = true
	return &entity.Book{ID: id, Status: entity.BookStatusArchived}, nil
}

func (f *fakeOps) Unarchive(context.Context, int64) (*entity.Book, error) {
	return nil, apperrors.ErrInvalidTransition.WithDetail("draft -> draft")
}

func (f *fakeOps) AudioPlaylist(context.Context, int64) ([]media.PlaylistEntry, error) {
	return nil, apperrors.ErrNotPublished
}

func (f *fakeOps) OpenBookAudio(context.Context, int64) (io.ReadCloser, *entity.Asset, error) {
	return nil, nil, apperrors.ErrNotPublished
}

func runCLI(t *testing.T, ops *fakeOps, args ...string) (string, error) {
	t.Helper()

	dir := ""
	ctx := newCommandContext(&dir)
	ctx.configOnce.Do(func() { ctx.config = &config.Config{} })
	ctx.newService = func(context.Context, *config.Config) (mediaOps, func(), error) {
		return ops, func() {}, nil
	}

	cmd := buildRootCommand(ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPicturesGenerate_PrintsOutcomeTable(t *testing.T) {
	ops := &fakeOps{outcome: media.BatchOutcome{Total: 4, Generated: 3, Failed: 1, Skipped: 2}}

	out, err := runCLI(t, ops, "pictures", "generate", "7", "--replace")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if ops.replace == nil || !*ops.replace {
		t.Fatalf("--replace should be forwarded")
	}
	for _, want := range []string{"Generated", "Skipped", "generate"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "interrupted") {
		t.Fatalf("unexpected interrupted note:\n%s", out)
	}
}

func TestPicturesRetry_ReportsInterruption(t *testing.T) {
	ops := &fakeOps{outcome: media.BatchOutcome{Total: 1, Generated: 1, Interrupted: true}}

	out, err := runCLI(t, ops, "pictures", "retry", "7")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "interrupted") {
		t.Fatalf("want interrupted note:\n%s", out)
	}
}

func TestPagePicture_ReplacesByDefault(t *testing.T) {
	ops := &fakeOps{}

	out, err := runCLI(t, ops, "page", "picture", "5")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if ops.replace == nil || !*ops.replace {
		t.Fatalf("page picture should replace by default")
	}
	if !strings.Contains(out, "page 5: generated") {
		t.Fatalf("output: got=%q", out)
	}

	if _, err := runCLI(t, ops, "page", "picture", "5", "--keep-existing"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if *ops.replace {
		t.Fatalf("--keep-existing should disable replace")
	}
}

func TestPublishAndArchive(t *testing.T) {
	ops := &fakeOps{}

	out, err := runCLI(t, ops, "publish", "9")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(out, "Published") || !strings.Contains(out, "yes") {
		t.Fatalf("publish output:\n%s", out)
	}

	out, err = runCLI(t, ops, "archive", "9")
	if err != nil || !ops.archived {
		t.Fatalf("archive: err=%v archived=%v", err, ops.archived)
	}
	if !strings.Contains(out, "book 9: Archived") {
		t.Fatalf("archive output: got=%q", out)
	}

	_, err = runCLI(t, ops, "unarchive", "9")
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("unarchive: want InvalidTransition got=%v", err)
	}
}

func TestInvalidID(t *testing.T) {
	if _, err := runCLI(t, &fakeOps{}, "publish", "abc"); err == nil || !strings.Contains(err.Error(), "invalid book id") {
		t.Fatalf("want invalid id error got=%v", err)
	}
}
