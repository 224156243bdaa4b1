package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/cookiebridge/cmd/common"
	"github.com/warpdl/cookiebridge/internal/cookies"
	"github.com/warpdl/cookiebridge/pkg/logger"
)

var importFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "from, f",
		Usage: "cookie database or cookies.txt to import from (default: detect browser)",
	},
	cli.BoolFlag{
		Name:  "quiet, q",
		Usage: "do not show progress",
	},
}

// importFs is swapped in tests.
var importFs afero.Fs = afero.NewOsFs()

type importSource interface {
	Import(ctx context.Context, path, domain string) ([]cookies.Cookie, *cookies.Source, error)
	Detect(ctx context.Context, domain string) ([]cookies.Cookie, *cookies.Source, error)
	Batches(list []cookies.Cookie) []cookies.Batch
}

func importCookies(ctx *cli.Context) error {
	domains := []string(ctx.Args())
	if len(domains) == 0 {
		return common.PrintErrWithCmdHelp(ctx, errMissingArgs)
	}
	client, ok := connect(ctx, "import")
	if !ok {
		return nil
	}
	defer client.Close()

	var l logger.Logger = logger.NewNopLogger()
	if !ctx.Bool("quiet") {
		l = logger.NewStandardLogger(log.New(errWriter(ctx), "import: ", 0))
	}
	im := cookies.NewImporter(importFs, l)
	from := ctx.String("from")
	for _, domain := range domains {
		if err := importDomain(ctx, client, im, from, domain); err != nil {
			common.PrintRuntimeErr(ctx, "import", domain, err)
		}
	}
	return nil
}

func importDomain(ctx *cli.Context, client cookieClient, src importSource, from, domain string) error {
	cctx, cancel := context.WithTimeout(context.Background(), 4*DEF_CALL_TIMEOUT)
	defer cancel()

	var (
		list []cookies.Cookie
		info *cookies.Source
		err  error
	)
	if from != "" {
		list, info, err = src.Import(cctx, from, domain)
	} else {
		list, info, err = src.Detect(cctx, domain)
	}
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(ctx.App.Writer, "no cookies for %s in %s\n", domain, info.Path)
		return nil
	}

	batches := src.Batches(list)
	total := 0
	for _, b := range batches {
		total += len(b.Cookies)
	}

	var bar *mpb.Bar
	var p *mpb.Progress
	if !ctx.Bool("quiet") {
		p = mpb.New(mpb.WithOutput(ctx.App.Writer))
		bar = common.InitImportBar(p, domain, int64(total))
	}

	var failed error
	imported := 0
	for _, b := range batches {
		if _, err := client.SetCookies(cctx, b.URL, b.Cookies); err != nil {
			failed = errors.Join(failed, fmt.Errorf("%s: %w", b.URL, err))
			break
		}
		imported += len(b.Cookies)
		if bar != nil {
			bar.IncrBy(len(b.Cookies))
		}
	}
	if p != nil {
		if failed != nil || imported < total {
			bar.Abort(false)
		}
		p.Wait()
	}
	if failed != nil {
		return failed
	}
	fmt.Fprintf(ctx.App.Writer, "imported %d cookie(s) for %s from %s (%s)\n", imported, domain, info.Browser, info.Format)
	return nil
}

func errWriter(ctx *cli.Context) io.Writer {
	if ctx.App.ErrWriter != nil {
		return ctx.App.ErrWriter
	}
	return os.Stderr
}
