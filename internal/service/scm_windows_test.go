//go:build windows

package service

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/sys/windows"
)

func TestScmError(t *testing.T) {
	tests := []struct {
		errno windows.Errno
		want  error
	}{
		{windows.ERROR_SERVICE_DOES_NOT_EXIST, ErrServiceNotFound},
		{windows.ERROR_SERVICE_EXISTS, ErrServiceExists},
		{windows.ERROR_SERVICE_ALREADY_RUNNING, ErrServiceAlreadyRunning},
		{windows.ERROR_SERVICE_NOT_ACTIVE, ErrServiceNotRunning},
	}
	for _, tt := range tests {
		err := scmError("open", "CookieBridge", tt.errno)
		if !errors.Is(err, tt.want) || !errors.Is(err, tt.errno) {
			t.Errorf("scmError(%v) = %v, want it to match %v", tt.errno, err, tt.want)
		}
		if !strings.Contains(err.Error(), `"CookieBridge"`) {
			t.Errorf("scmError(%v) = %v, missing service name", tt.errno, err)
		}
	}

	err := scmError("start", "CookieBridge", windows.ERROR_ACCESS_DENIED)
	if !errors.Is(err, windows.ERROR_ACCESS_DENIED) || errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("unmapped errno = %v", err)
	}
}
