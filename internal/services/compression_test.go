package services_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jkilzi/taskqueue/internal/services"
)

var _ = Describe("Compression", func() {
	var (
		ctx     context.Context
		root    string
		input   string
		content []byte
		svc     *services.Compression
	)

	BeforeEach(func() {
		ctx = context.Background()
		root = GinkgoT().TempDir()
		input = filepath.Join(root, "input.txt")
		content = []byte(strings.Repeat("the quick brown fox jumps over the lazy dog\n", 5000))
		Expect(os.WriteFile(input, content, 0o644)).To(Succeed())
		svc = services.NewCompressionService(2)
	})

	decode := func(path string, newReader func(io.Reader) (io.Reader, error)) []byte {
		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		r, err := newReader(f)
		Expect(err).NotTo(HaveOccurred())
		out, err := io.ReadAll(r)
		Expect(err).NotTo(HaveOccurred())
		return out
	}

	// Given a compressible file
	// When it is compressed
	// Then one smaller output per codec is written next to it
	It("should write one output per codec", func() {
		stats, err := svc.Compress(ctx, input)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(HaveLen(4))

		Expect(stats[0].Algorithm).To(Equal("original"))
		Expect(stats[0].Size).To(Equal(int64(len(content))))

		names := []string{}
		for _, s := range stats[1:] {
			names = append(names, s.Algorithm)
			Expect(s.Path).To(Equal(input + "." + s.Algorithm))
			Expect(s.Path).To(BeAnExistingFile())
			Expect(s.Size).To(BeNumerically("<", stats[0].Size))
		}
		Expect(names).To(Equal([]string{"gzip", "deflate", "zstd"}))
	})

	It("should produce outputs that decompress to the input", func() {
		_, err := svc.Compress(ctx, input)
		Expect(err).NotTo(HaveOccurred())

		Expect(decode(input+".gzip", func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		})).To(Equal(content))
		Expect(decode(input+".deflate", func(r io.Reader) (io.Reader, error) {
			return flate.NewReader(r), nil
		})).To(Equal(content))
		Expect(decode(input+".zstd", func(r io.Reader) (io.Reader, error) {
			return zstd.NewReader(r)
		})).To(Equal(content))
	})

	It("should fail on a missing input", func() {
		_, err := svc.Compress(ctx, filepath.Join(root, "missing.txt"))
		Expect(err).To(HaveOccurred())
	})

	It("should compress several files in argument order", func() {
		other := filepath.Join(root, "other.txt")
		Expect(os.WriteFile(other, bytes.Repeat([]byte("abc"), 100), 0o644)).To(Succeed())

		all, err := svc.CompressAll(ctx, input, other)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))
		Expect(all[0][0].Path).To(Equal(input))
		Expect(all[1][0].Path).To(Equal(other))
		Expect(all[1][0].Size).To(Equal(int64(300)))
	})
})
