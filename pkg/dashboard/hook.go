package dashboard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Refresh is wired into taskwarrior through its hook mechanism: a symlink
// named on-exit-dashboard inside <taskdata>/hooks pointing at our own
// executable. Taskwarrior runs every on-exit* hook after each command,
// passing key:value feedback arguments; when this binary notices it was
// invoked through that symlink (argv[0] basename), it switches into hook
// mode and refreshes any active dashboards.
//
// A symlink rather than a wrapper script keeps install/uninstall atomic and
// means upgrades of the binary need no hook changes.

// HookName is the symlink filename. Taskwarrior only runs hooks whose name
// starts with the event it fires, hence the on-exit prefix.
const HookName = "on-exit-dashboard"

// TaskDataDir returns taskwarrior's data directory: $TASKDATA if set,
// otherwise ~/.task.
func TaskDataDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TASKDATA")); v != "" {
		return expandPath(v), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".task"), nil
}

// HookPath returns the full path of the hook symlink inside taskDir.
// If taskDir is empty, the default data dir is used.
func HookPath(taskDir string) (string, error) {
	taskDir = strings.TrimSpace(taskDir)
	if taskDir == "" {
		var err error
		taskDir, err = TaskDataDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(taskDir, "hooks", HookName), nil
}

// InstallHook creates (or repoints) the on-exit symlink to the current
// executable. The hooks directory is created if missing.
func InstallHook(taskDir string) (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve own executable: %w", err)
	}
	self, err = filepath.EvalSymlinks(self)
	if err != nil {
		return "", fmt.Errorf("resolve own executable: %w", err)
	}

	link, err := HookPath(taskDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return "", fmt.Errorf("create hooks dir %s: %w", filepath.Dir(link), err)
	}

	// Repoint an existing link; refuse to clobber a regular file the user
	// put there.
	if fi, lerr := os.Lstat(link); lerr == nil {
		if fi.Mode()&os.ModeSymlink == 0 {
			return "", fmt.Errorf("hook path %s exists and is not a symlink; remove it first", link)
		}
		if err := os.Remove(link); err != nil {
			return "", fmt.Errorf("replace hook %s: %w", link, err)
		}
	}

	if err := os.Symlink(self, link); err != nil {
		return "", fmt.Errorf("symlink %s -> %s: %w", link, self, err)
	}
	return link, nil
}

// UninstallHook removes the hook symlink. A missing hook is not an error.
func UninstallHook(taskDir string) error {
	link, err := HookPath(taskDir)
	if err != nil {
		return err
	}
	fi, err := os.Lstat(link)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("hook path %s is not a symlink; refusing to remove", link)
	}
	return os.Remove(link)
}

// HookInstalled reports whether the hook symlink exists and where it points.
func HookInstalled(taskDir string) (bool, string, error) {
	link, err := HookPath(taskDir)
	if err != nil {
		return false, "", err
	}
	fi, err := os.Lstat(link)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, "", nil
		}
		return false, "", err
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return false, "", fmt.Errorf("hook path %s exists but is not a symlink", link)
	}
	target, err := os.Readlink(link)
	if err != nil {
		return false, "", err
	}
	return true, target, nil
}

// InvokedAsHook reports whether argv0 looks like a taskwarrior hook
// invocation (the symlink's basename starts with "on-exit").
func InvokedAsHook(argv0 string) bool {
	return strings.HasPrefix(filepath.Base(argv0), "on-exit")
}
