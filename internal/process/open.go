package process

import (
	"errors"
	"os/exec"
	"runtime"
)

// ErrNoViewer is returned when no viewer command exists for the platform.
var ErrNoViewer = errors.New("no viewer command for this platform")

// viewerCommand returns the command that opens path with the desktop's
// default application.
func viewerCommand(goos, path string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{path}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, nil
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return "xdg-open", []string{path}, nil
	}
	return "", nil, ErrNoViewer
}

// OpenFile opens path in the default viewer without waiting for it to exit.
func OpenFile(path string) error {
	name, args, err := viewerCommand(runtime.GOOS, path)
	if err != nil {
		return err
	}
	// #nosec G204 -- fixed viewer binary, path is a file we just wrote
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
