package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jkilzi/taskqueue/internal/models"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

type codec struct {
	name      string
	newWriter func(w io.Writer) (io.WriteCloser, error)
}

var codecs = []codec{
	{
		name: "gzip",
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriterLevel(w, gzip.DefaultCompression)
		},
	},
	{
		name: "deflate",
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, flate.DefaultCompression)
		},
	},
	{
		name: "zstd",
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		},
	},
}

// Compression compares codecs on the same input.
type Compression struct {
	concurrency int
	log         *zap.SugaredLogger
}

func NewCompressionService(concurrency int) *Compression {
	return &Compression{
		concurrency: concurrency,
		log:         zap.S().Named("compression_service"),
	}
}

// Compress reads file once and streams it through every codec at the same
// time, writing <file>.gzip, <file>.deflate and <file>.zstd. The first stat
// describes the input.
func (c *Compression) Compress(ctx context.Context, file string) ([]models.CompressionStat, error) {
	in, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return nil, err
	}

	stats := make([]models.CompressionStat, len(codecs)+1)
	stats[0] = models.CompressionStat{Algorithm: "original", Path: file, Size: info.Size()}

	g, gctx := errgroup.WithContext(ctx)

	pipes := make([]*io.PipeWriter, len(codecs))
	writers := make([]io.Writer, len(codecs))
	for i, cd := range codecs {
		pr, pw := io.Pipe()
		pipes[i] = pw
		writers[i] = pw

		g.Go(func() error {
			stat, err := compressStream(pr, file+"."+cd.name, cd)
			if err != nil {
				// unblock the tee
				pr.CloseWithError(err)
				return fmt.Errorf("%s: %w", cd.name, err)
			}
			stats[i+1] = stat
			return nil
		})
	}

	g.Go(func() error {
		_, err := io.Copy(io.MultiWriter(writers...), contextReader{ctx: gctx, r: in})
		for _, pw := range pipes {
			pw.CloseWithError(err)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Debugw("file compressed", "file", file, "stats", stats)
	return stats, nil
}

// CompressAll compresses files with at most concurrency files in flight and
// returns their stats in argument order.
func (c *Compression) CompressAll(ctx context.Context, files ...string) ([][]models.CompressionStat, error) {
	return scheduler.MapAsync(ctx, files, c.concurrency, func(ctx context.Context, file string, _ int) ([]models.CompressionStat, error) {
		return c.Compress(ctx, file)
	})
}

func compressStream(r io.Reader, dest string, cd codec) (models.CompressionStat, error) {
	start := time.Now()

	out, err := os.Create(dest)
	if err != nil {
		return models.CompressionStat{}, err
	}
	defer out.Close()

	w, err := cd.newWriter(out)
	if err != nil {
		return models.CompressionStat{}, err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return models.CompressionStat{}, err
	}
	if err := w.Close(); err != nil {
		return models.CompressionStat{}, err
	}
	if err := out.Close(); err != nil {
		return models.CompressionStat{}, err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return models.CompressionStat{}, err
	}
	return models.CompressionStat{
		Algorithm: cd.name,
		Path:      dest,
		Size:      info.Size(),
		Duration:  time.Since(start),
	}, nil
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
