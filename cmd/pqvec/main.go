package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pqvec"
	"github.com/hupe1980/pqvec/testutil"
)

var version = "dev"

type trainFlags struct {
	input            string
	dimension        int
	subvectors       int
	centroids        int
	seed             int64
	legacyValidation bool
	extendTail       bool
	codebooks        string
	verbose          bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pqvec",
		Short:        "Product quantization for float32 vectors",
		Long:         `Train product quantization codebooks and measure reconstruction error.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newTrainCmd(), newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pqvec %s\n", version)
		},
	}
}

func newTrainCmd() *cobra.Command {
	var f trainFlags

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train codebooks from a JSON array of vectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd.Context(), f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "JSON file holding an array of vectors")
	flags.IntVarP(&f.dimension, "dim", "d", 0, "vector dimension (defaults to the length of the first vector)")
	flags.IntVarP(&f.subvectors, "subvectors", "m", 8, "number of subvectors")
	flags.IntVarP(&f.centroids, "centroids", "k", 256, "centroids per subvector (1-256)")
	flags.Int64Var(&f.seed, "seed", 1, "seed for centroid initialization")
	flags.BoolVar(&f.legacyValidation, "legacy-validation", false, "only reject input when every vector has the wrong length")
	flags.BoolVar(&f.extendTail, "extend-tail", false, "fold trailing dimensions into the last subvector")
	flags.StringVar(&f.codebooks, "codebooks", "", "write the trained codebooks as JSON to this file")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runTrain(ctx context.Context, f trainFlags, stdout, stderr io.Writer) error {
	vectors, err := readVectors(f.input)
	if err != nil {
		return err
	}

	dim := f.dimension
	if dim == 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := pqvec.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := []pqvec.Option{
		pqvec.WithNumCentroids(f.centroids),
		pqvec.WithSeed(f.seed),
		pqvec.WithLogger(logger),
	}
	if f.legacyValidation {
		opts = append(opts, pqvec.WithValidationPolicy(pqvec.ValidationLegacy))
	}
	if f.extendTail {
		opts = append(opts, pqvec.WithTailPolicy(pqvec.TailExtend))
	}

	q, err := pqvec.New(dim, f.subvectors, opts...)
	if err != nil {
		return err
	}

	if err := q.Train(ctx, vectors); err != nil {
		return err
	}

	mse, encoded, err := reconstructionError(ctx, q, vectors)
	if err != nil {
		return err
	}

	pq := q.ProductQuantizer()
	fmt.Fprintf(stdout, "vectors:           %d (encoded %d)\n", len(vectors), encoded)
	fmt.Fprintf(stdout, "bytes per vector:  %d\n", pq.BytesPerVector())
	fmt.Fprintf(stdout, "compression ratio: %.1fx\n", pq.CompressionRatio())
	fmt.Fprintf(stdout, "reconstruction mse: %.6f\n", mse)

	if f.codebooks != "" {
		if err := writeCodebooks(f.codebooks, q.Export()); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "codebooks written to %s\n", f.codebooks)
	}

	return nil
}

// reconstructionError encodes every vector that covers all slots and returns
// the mean squared error over the decoded prefix.
func reconstructionError(ctx context.Context, q *pqvec.Quantizer, vectors [][]float32) (float64, int, error) {
	need := q.DecodedDimension()

	usable := make([][]float32, 0, len(vectors))
	for _, v := range vectors {
		if len(v) >= need {
			usable = append(usable, v)
		}
	}
	if len(usable) == 0 {
		return 0, 0, nil
	}

	codes, err := q.EncodeBatch(ctx, usable)
	if err != nil {
		return 0, 0, err
	}

	decoded, err := q.DecodeBatch(ctx, codes)
	if err != nil {
		return 0, 0, err
	}

	var total float64
	for i, v := range usable {
		total += testutil.MSE(v[:need], decoded[i])
	}

	return total / float64(len(usable)), len(usable), nil
}

func readVectors(path string) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var vectors [][]float32
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, fmt.Errorf("invalid input JSON: %w", err)
	}

	return vectors, nil
}

func writeCodebooks(path string, exp any) error {
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode codebooks: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write codebooks: %w", err)
	}

	return nil
}
