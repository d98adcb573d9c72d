// Package fetcher launches the external fetcher process. The fetcher owns
// all network work (downloads, retries, zstd compression of dumps); this
// package only builds its command line and surfaces its exit status.
package fetcher

import (
	"context"
	"os"
	"os/exec"
	"strconv"

	"go.uber.org/zap"

	"github.com/quantfold/stockdump/pkg/config"
	"github.com/quantfold/stockdump/pkg/errors"
	"github.com/quantfold/stockdump/pkg/logger"
)

// Run executes the fetcher in batch mode over manifestPath, writing
// compressed dumps into outputDir. The fetcher's stdout/stderr pass
// through to the user.
func Run(ctx context.Context, fc config.FetcherConfig, manifestPath, outputDir string) error {
	if _, err := os.Stat(manifestPath); err != nil {
		return errors.Wrap(err, errors.ErrorTypeUsage, "manifest not found")
	}

	bin, err := exec.LookPath(fc.Binary)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeUsage,
			"fetcher binary not found").WithDetail("binary", fc.Binary)
	}

	args := []string{
		"--concurrency", strconv.Itoa(fc.Concurrency),
		"--retries", strconv.Itoa(fc.Retries),
		"--timeout-secs", strconv.Itoa(fc.TimeoutSecs),
		"batch",
		"--manifest", manifestPath,
		"--output-dir", outputDir,
		"--level", strconv.Itoa(fc.Level),
	}

	logger.Get().Info("running fetcher",
		zap.String("binary", bin),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "fetcher failed")
	}
	return nil
}
