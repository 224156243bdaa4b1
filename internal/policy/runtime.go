package policy

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"github.com/spf13/afero"
	"github.com/warpdl/cookiebridge/pkg/logger"
)

// consolePrinter sends console output of policy scripts to the daemon log.
type consolePrinter struct {
	l logger.Logger
}

func (p consolePrinter) Log(msg string)   { p.l.Info("console: %s", msg) }
func (p consolePrinter) Warn(msg string)  { p.l.Warning("console: %s", msg) }
func (p consolePrinter) Error(msg string) { p.l.Error("console: %s", msg) }

// newRuntime returns a runtime with require() reading from fsys and a
// console bound to l.
func newRuntime(fsys afero.Fs, l logger.Logger) (*goja.Runtime, *require.RequireModule) {
	registry := require.NewRegistry(require.WithLoader(sourceLoader(fsys)))
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(consolePrinter{l: l}))

	vm := goja.New()
	req := registry.Enable(vm)
	console.Enable(vm)
	return vm, req
}

func sourceLoader(fsys afero.Fs) require.SourceLoader {
	return func(path string) ([]byte, error) {
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
				return nil, require.ModuleFileDoesNotExistError
			}
			return nil, err
		}
		return data, nil
	}
}
