package searcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chunkgrep/internal/aggregator"
	"github.com/dshills/chunkgrep/internal/dispatcher"
	"github.com/dshills/chunkgrep/internal/walker"
	"github.com/dshills/chunkgrep/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeLines(t testing.TB, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func config(pattern, root string) types.SearchConfig {
	return types.SearchConfig{
		Pattern:     pattern,
		Root:        root,
		Parallelism: 1,
		ChunkSize:   types.DefaultChunkSize,
	}
}

func search(t *testing.T, cfg types.SearchConfig) ([]types.MatchRecord, *types.Summary) {
	t.Helper()
	sink := &aggregator.Collector{}
	summary, err := New(quietLogger()).Search(context.Background(), cfg, sink)
	require.NoError(t, err)
	return sink.Records, summary
}

// buildTree creates a small nested tree with matches spread across chunks
func buildTree(t testing.TB) string {
	t.Helper()
	root := t.TempDir()

	for d := 0; d < 3; d++ {
		for f := 0; f < 4; f++ {
			lines := make([]string, 37+d*11+f)
			for i := range lines {
				switch {
				case i%7 == 0:
					lines[i] = fmt.Sprintf("foo at %d", i)
				case i%11 == 0:
					lines[i] = fmt.Sprintf("FOO shouted at %d", i)
				default:
					lines[i] = fmt.Sprintf("nothing here %d", i)
				}
			}
			writeLines(t, filepath.Join(root, fmt.Sprintf("dir%d", d), fmt.Sprintf("file%d.txt", f)), lines...)
		}
	}
	writeLines(t, filepath.Join(root, "top.txt"), "foo", "bar")
	writeLines(t, filepath.Join(root, "empty.txt"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "crlf.txt"), []byte("foo\r\nbar\r\nfoo"), 0644))

	return root
}

func TestSearch_TwoFileScenario(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.txt")
	writeLines(t, a, "foo", "bar", "FOO")
	writeLines(t, filepath.Join(root, "b.txt"), "baz")

	t.Run("case sensitive", func(t *testing.T) {
		records, summary := search(t, config("foo", root))
		assert.Equal(t, []types.MatchRecord{{Path: a, LineNumber: 1, Line: "foo"}}, records)
		assert.Equal(t, types.StatusClean, summary.Status)
		assert.Equal(t, 2, summary.FilesScanned)
		assert.Equal(t, 1, summary.FilesMatched)
	})

	t.Run("ignore case", func(t *testing.T) {
		cfg := config("foo", root)
		cfg.IgnoreCase = true
		records, summary := search(t, cfg)
		assert.Equal(t, []types.MatchRecord{
			{Path: a, LineNumber: 1, Line: "foo"},
			{Path: a, LineNumber: 3, Line: "FOO"},
		}, records)
		assert.Equal(t, 2, summary.Matches)
	})
}

func TestSearch_ChunkSizeDoesNotChangeResults(t *testing.T) {
	root := buildTree(t)

	small := config("foo", root)
	small.ChunkSize = 1
	large := config("foo", root)
	large.ChunkSize = 1_000_000

	smallRecords, smallSummary := search(t, small)
	largeRecords, largeSummary := search(t, large)

	require.NotEmpty(t, smallRecords)
	assert.Equal(t, largeRecords, smallRecords)
	assert.Equal(t, largeSummary.FilesScanned, smallSummary.FilesScanned)
	assert.Equal(t, largeSummary.Bytes, smallSummary.Bytes)
	assert.Greater(t, smallSummary.Chunks, largeSummary.Chunks)
}

func TestSearch_ParallelismDoesNotChangeResults(t *testing.T) {
	root := buildTree(t)

	for _, ignoreCase := range []bool{false, true} {
		t.Run(fmt.Sprintf("ignoreCase=%v", ignoreCase), func(t *testing.T) {
			serial := config("foo", root)
			serial.IgnoreCase = ignoreCase
			serial.ChunkSize = 3

			parallel := serial
			parallel.Parallelism = min(8, types.MaxParallelism())

			serialRecords, _ := search(t, serial)
			for i := 0; i < 5; i++ {
				parallelRecords, _ := search(t, parallel)
				assert.Equal(t, serialRecords, parallelRecords)
			}
		})
	}
}

// runPipeline drives the dispatcher and aggregator directly, so worker
// counts above the host's CPU count are exercised too
func runPipeline(t *testing.T, cfg types.SearchConfig) []types.MatchRecord {
	t.Helper()
	sink := &aggregator.Collector{}
	agg := aggregator.New(sink, cfg.Window())
	d := dispatcher.New(cfg, dispatcher.WithAdmitter(agg), dispatcher.WithLogger(quietLogger()))

	results := make(chan dispatcher.Result, cfg.Parallelism)
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Run(context.Background(), results)
	}()

	summary := agg.Consume(results)
	require.NoError(t, <-errCh)
	assert.Equal(t, types.StatusClean, summary.Status)
	return sink.Records
}

func TestPipeline_FourWorkersMatchSerial(t *testing.T) {
	root := buildTree(t)

	serial := config("foo", root)
	serial.IgnoreCase = true
	serial.ChunkSize = 3

	parallel := serial
	parallel.Parallelism = 4
	parallel.QueueCapacity = 2

	want, _ := search(t, serial)
	require.NotEmpty(t, want)
	for i := 0; i < 5; i++ {
		assert.Equal(t, want, runPipeline(t, parallel))
	}
}

func TestSearch_LineNumbersAcrossChunks(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "big.txt")
	lines := make([]string, 2500)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	lines[0] = "needle first"
	lines[999] = "needle end of chunk 1"
	lines[1000] = "needle start of chunk 2"
	lines[2499] = "needle last"
	writeLines(t, path, lines...)

	cfg := config("needle", path)
	cfg.Parallelism = min(3, types.MaxParallelism())

	records, summary := search(t, cfg)

	var got []int
	for _, rec := range records {
		assert.Equal(t, path, rec.Path)
		got = append(got, rec.LineNumber)
	}
	assert.Equal(t, []int{1, 1000, 1001, 2500}, got)
	assert.Equal(t, 3, summary.Chunks)
	assert.Equal(t, 1, summary.FilesScanned)
}

func TestSearch_UnreadableSingleFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	path := filepath.Join(t.TempDir(), "locked.txt")
	writeLines(t, path, "foo")
	require.NoError(t, os.Chmod(path, 0000))
	t.Cleanup(func() { _ = os.Chmod(path, 0644) })

	sink := &aggregator.Collector{}
	summary, err := New(quietLogger()).Search(context.Background(), config("foo", path), sink)
	require.NoError(t, err)

	assert.Empty(t, sink.Records)
	require.Len(t, sink.Notices, 1)
	assert.Equal(t, path, sink.Notices[0].Path)
	assert.True(t, sink.Notices[0].Skipped)
	assert.Equal(t, types.StatusWarnings, summary.Status)
	assert.Equal(t, 1, summary.FilesSkipped)
}

func TestSearch_InvalidConfig(t *testing.T) {
	root := buildTree(t)

	tests := []struct {
		name   string
		mutate func(*types.SearchConfig)
		want   error
	}{
		{"empty pattern", func(c *types.SearchConfig) { c.Pattern = "" }, types.ErrEmptyPattern},
		{"zero parallelism", func(c *types.SearchConfig) { c.Parallelism = 0 }, types.ErrInvalidParallelism},
		{"zero chunk size", func(c *types.SearchConfig) { c.ChunkSize = 0 }, types.ErrInvalidChunkSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config("foo", root)
			tt.mutate(&cfg)

			sink := &aggregator.Collector{}
			summary, err := New(quietLogger()).Search(context.Background(), cfg, sink)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrConfig)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, types.IsFatal(err))
			assert.Equal(t, types.StatusFailed, summary.Status)
			assert.Empty(t, sink.Records)
			assert.Empty(t, sink.Notices)
		})
	}
}

func TestSearch_RootNotFound(t *testing.T) {
	sink := &aggregator.Collector{}
	summary, err := New(quietLogger()).Search(context.Background(),
		config("foo", filepath.Join(t.TempDir(), "missing")), sink)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrPathNotFound)
	assert.Equal(t, types.StatusFailed, summary.Status)
	assert.NotEmpty(t, summary.RunID)
}

func TestSearch_Cancelled(t *testing.T) {
	root := buildTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := New(quietLogger()).Search(ctx, config("foo", root), &aggregator.Collector{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, types.StatusFailed, summary.Status)
}

func TestSearch_WalkOptions(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "keep.txt"), "foo")
	writeLines(t, filepath.Join(root, ".hidden", "a.txt"), "foo")
	writeLines(t, filepath.Join(root, "vendor", "b.txt"), "foo")

	s := New(quietLogger(), WithWalkOptions(walker.Options{
		SkipHidden:  true,
		ExcludeDirs: []string{"vendor"},
	}))

	sink := &aggregator.Collector{}
	summary, err := s.Search(context.Background(), config("foo", root), sink)
	require.NoError(t, err)

	require.Len(t, sink.Records, 1)
	assert.Equal(t, filepath.Join(root, "keep.txt"), sink.Records[0].Path)
	assert.Equal(t, 1, summary.FilesScanned)
}

func TestSearch_SummaryMetadata(t *testing.T) {
	root := buildTree(t)
	_, first := search(t, config("foo", root))
	_, second := search(t, config("foo", root))

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Positive(t, first.Duration)
	assert.Positive(t, first.Bytes)
	assert.Equal(t, 15, first.FilesScanned)
}

// BenchmarkSearch measures a full run over a generated tree
func BenchmarkSearch(b *testing.B) {
	root := b.TempDir()
	for f := 0; f < 50; f++ {
		lines := make([]string, 2000)
		for i := range lines {
			if i%97 == 0 {
				lines[i] = "the quick brown fox jumps over the lazy dog"
			} else {
				lines[i] = fmt.Sprintf("filler line %d of file %d with some text", i, f)
			}
		}
		writeLines(b, filepath.Join(root, fmt.Sprintf("f%02d.txt", f)), lines...)
	}

	for _, workers := range []int{1, min(4, types.MaxParallelism())} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			cfg := config("LAZY DOG", root)
			cfg.IgnoreCase = true
			cfg.Parallelism = workers
			s := New(quietLogger())

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := s.Search(context.Background(), cfg, &aggregator.Collector{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
