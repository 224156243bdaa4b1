package cmd

import (
	"bytes"
	"context"
	"flag"
	"io"
	"testing"

	"github.com/urfave/cli"
	"github.com/warpdl/cookiebridge/pkg/cookiecli"
	"github.com/warpdl/cookiebridge/pkg/cookiestore"
)

// newTestContext parses args against flags and returns a context whose
// output lands in the returned buffer.
func newTestContext(t *testing.T, name string, flags []cli.Flag, args ...string) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	app := cli.NewApp()
	app.Name = "cookiebridge"
	app.HelpName = "cookiebridge"
	out := &bytes.Buffer{}
	app.Writer = out
	app.ErrWriter = io.Discard

	set := flag.NewFlagSet(name, flag.ContinueOnError)
	for _, f := range flags {
		f.Apply(set)
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: name}
	return ctx, out
}

type setCall struct {
	url     string
	cookies []string
}

// fakeClient records calls and serves a fixed header.
type fakeClient struct {
	header  string
	had     bool
	err     error
	sets    []setCall
	gets    []string
	clears  int
	closed  bool
	version cookiecli.Version
	caps    cookiestore.Capabilities
}

func (f *fakeClient) GetCookies(_ context.Context, rawURL string) (string, error) {
	f.gets = append(f.gets, rawURL)
	return f.header, f.err
}

func (f *fakeClient) SetCookies(_ context.Context, rawURL string, cookies []string) (bool, error) {
	f.sets = append(f.sets, setCall{rawURL, cookies})
	return f.err == nil, f.err
}

func (f *fakeClient) ClearCookies(context.Context) (bool, error) {
	f.clears++
	return f.had, f.err
}

func (f *fakeClient) Version(context.Context) (*cookiecli.Version, error) {
	if f.err != nil {
		return nil, f.err
	}
	v := f.version
	return &v, nil
}

func (f *fakeClient) Capabilities(context.Context) (*cookiestore.Capabilities, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := f.caps
	return &c, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func useFakeClient(t *testing.T, fc *fakeClient) {
	t.Helper()
	orig := newClient
	newClient = func(string) (cookieClient, error) { return fc, nil }
	t.Cleanup(func() { newClient = orig })
}
