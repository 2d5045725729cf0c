package dashboard

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInstallHook_CreatesSymlink(t *testing.T) {
	taskDir := t.TempDir()

	link, err := InstallHook(taskDir)
	if err != nil {
		t.Fatalf("InstallHook error: %v", err)
	}
	if filepath.Base(link) != HookName {
		t.Fatalf("unexpected hook name %q", link)
	}

	fi, err := os.Lstat(link)
	if err != nil {
		t.Fatalf("lstat hook: %v", err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		t.Fatalf("hook is not a symlink")
	}

	ok, target, err := HookInstalled(taskDir)
	if err != nil {
		t.Fatalf("HookInstalled error: %v", err)
	}
	if !ok || target == "" {
		t.Fatalf("expected installed hook, got ok=%v target=%q", ok, target)
	}

	// Reinstall must repoint, not fail.
	if _, err := InstallHook(taskDir); err != nil {
		t.Fatalf("reinstall error: %v", err)
	}
}

func TestInstallHook_RefusesRegularFile(t *testing.T) {
	taskDir := t.TempDir()
	hooks := filepath.Join(taskDir, "hooks")
	if err := os.MkdirAll(hooks, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hooks, HookName), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := InstallHook(taskDir); err == nil {
		t.Fatalf("expected refusal to clobber a regular file")
	}
	if err := UninstallHook(taskDir); err == nil {
		t.Fatalf("expected refusal to remove a regular file")
	}
}

func TestUninstallHook(t *testing.T) {
	taskDir := t.TempDir()

	// Missing hook is fine.
	if err := UninstallHook(taskDir); err != nil {
		t.Fatalf("uninstall of missing hook: %v", err)
	}

	if _, err := InstallHook(taskDir); err != nil {
		t.Fatalf("InstallHook error: %v", err)
	}
	if err := UninstallHook(taskDir); err != nil {
		t.Fatalf("UninstallHook error: %v", err)
	}
	ok, _, err := HookInstalled(taskDir)
	if err != nil {
		t.Fatalf("HookInstalled error: %v", err)
	}
	if ok {
		t.Fatalf("hook still installed after uninstall")
	}
}

func TestTaskDataDir_EnvOverride(t *testing.T) {
	t.Setenv("TASKDATA", "/custom/task")
	dir, err := TaskDataDir()
	if err != nil {
		t.Fatalf("TaskDataDir error: %v", err)
	}
	if dir != "/custom/task" {
		t.Fatalf("expected /custom/task, got %q", dir)
	}
}

func TestInvokedAsHook(t *testing.T) {
	if !InvokedAsHook("/home/u/.task/hooks/on-exit-dashboard") {
		t.Fatalf("expected hook invocation to be detected")
	}
	if InvokedAsHook("/usr/local/bin/task-dashboard") {
		t.Fatalf("expected normal invocation not to be detected")
	}
}
