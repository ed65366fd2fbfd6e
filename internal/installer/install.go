package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"appimage-installer/internal/apperr"
	"appimage-installer/internal/desktop"
	"appimage-installer/internal/icons"
	"appimage-installer/internal/logging"
	"appimage-installer/internal/models"
)

// InstallOptions tunes an install
type InstallOptions struct {
	// SkipIcon uses the bundled default icon without extraction or search
	SkipIcon bool
	// Icon is an image file to use instead of resolving one
	Icon      string
	Comment   string
	ExtraArgs []string
}

// Install copies the bundle at src into the bundle directory and registers it.
func (i *Installer) Install(ctx context.Context, src string, opts InstallOptions) Result {
	name := AppName(src)
	res := Result{Op: OpInstall, Name: name}
	log := logging.Logger.With("op", OpInstall, "app", name)

	if _, err := ValidateBundle(src); err != nil {
		return i.reject(res, err)
	}
	if name == "" {
		return i.reject(res, apperr.Validation("cannot derive an app name from "+src))
	}
	for field, value := range map[string]string{"name": name, "comment": opts.Comment} {
		if err := singleLine(field, value); err != nil {
			return i.reject(res, err)
		}
	}
	for _, arg := range opts.ExtraArgs {
		if err := singleLine("argument", arg); err != nil {
			return i.reject(res, err)
		}
	}

	dest := filepath.Join(i.bundleDir, filepath.Base(src))

	if prev, exists := i.reg.Get(name); exists {
		if !i.prompter.ConfirmOverwrite(name) {
			log.Info("overwrite declined")
			res.Status = StatusCancelled
			return res
		}
		for _, err := range i.clearStale(prev, dest) {
			res.warn(err)
		}
	}

	if err := copyBundle(src, dest); err != nil {
		log.Error("failed to copy bundle", "error", err)
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	log.Info("bundle copied", "path", dest)

	iconPath := i.installIcon(ctx, name, dest, opts, &res)

	content := desktop.Render(desktop.Entry{
		Name:      name,
		Exec:      dest,
		Icon:      iconPath,
		Comment:   opts.Comment,
		ExtraArgs: opts.ExtraArgs,
	})
	var stepErr error
	if err := i.writer.Write(name, content); err != nil {
		log.Error("failed to write desktop entries", "error", err)
		stepErr = err
	}

	rec := models.AppRecord{
		Path:        dest,
		Icon:        iconPath,
		InstallDate: models.NewTimestamp(i.clock.Now()),
		Comment:     opts.Comment,
	}
	if err := i.reg.Upsert(name, rec); err != nil {
		return i.reject(res, err)
	}
	for _, w := range i.persist("install " + name) {
		res.warn(w)
	}

	if stepErr != nil {
		res.Status = StatusFailed
		res.Err = stepErr
		return res
	}
	log.Info("installed", "icon", iconPath)
	res.Status = StatusSucceeded
	return res
}

// installIcon stores an icon for name and returns its path. Problems are
// recorded as warnings.
func (i *Installer) installIcon(ctx context.Context, name, bundle string, opts InstallOptions, res *Result) string {
	if opts.Icon != "" {
		path, err := i.resolver.Import(opts.Icon, name)
		if err == nil {
			return path
		}
		i.prompter.Warn(err.Error())
		res.warn(err)
	}

	dst := i.iconPath(name)
	if opts.SkipIcon {
		if err := icons.WriteDefault(dst); err != nil {
			res.warn(err)
			return ""
		}
		return dst
	}

	resolution, err := i.resolver.Resolve(ctx, name, bundle, icons.ChooserFunc(i.prompter.ChooseIcon))
	if err != nil {
		i.prompter.Warn(err.Error())
		res.warn(err)
	}
	return resolution.Path
}

// clearStale removes what a previous install of the same name left behind so
// no stale entry or icon survives the overwrite.
func (i *Installer) clearStale(prev models.AppRecord, dest string) []error {
	var errs []error
	if err := i.writer.Remove(prev.Name); err != nil {
		errs = append(errs, err)
	}
	if i.ownsIcon(prev.Icon) {
		if err := removeFile(prev.Icon, "icon"); err != nil {
			errs = append(errs, err)
		}
	}
	if prev.Path != dest && isWithin(i.bundleDir, prev.Path) {
		if err := removeFile(prev.Path, "bundle"); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (i *Installer) reject(res Result, err error) Result {
	logging.Logger.Warn("operation rejected", "op", res.Op, "app", res.Name, "error", err)
	if apperr.Is(err, apperr.KindValidation) {
		i.prompter.Warn(err.Error())
	}
	res.Status = StatusRejected
	res.Err = err
	return res
}

// copyBundle copies src to dest through a temporary file and marks it
// executable. Copying a file onto itself only fixes the mode.
func copyBundle(src, dest string) error {
	if same, _ := sameFile(src, dest); same {
		return os.Chmod(dest, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create bundle directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".install-*")
	if err != nil {
		return fmt.Errorf("copy bundle: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("copy bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("copy bundle: %w", err)
	}
	if err := os.Chmod(tmpPath, 0755); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod bundle: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("copy bundle: %w", err)
	}
	return nil
}

func sameFile(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ia, ib), nil
}
