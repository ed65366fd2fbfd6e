package icons

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"appimage-installer/internal/apperr"
	"appimage-installer/internal/logging"
)

// Extractor pulls an icon out of a bundle and stores it as a PNG at dst
type Extractor interface {
	Extract(ctx context.Context, bundle, dst string) error
}

// extractPatterns are passed to --appimage-extract, most specific first
var extractPatterns = []string{"*.png", "usr/share/icons/**/*.png", "*.svg", ".DirIcon"}

var sizeDirPattern = regexp.MustCompile(`(\d+)x\d+`)

// BundleExtractor runs the bundle's own extraction mode in a scratch
// directory.
type BundleExtractor struct {
	Timeout time.Duration
}

// Extract implements Extractor. A bundle that yields no usable image is a
// not-found error.
func (e *BundleExtractor) Extract(ctx context.Context, bundle, dst string) error {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	scratch, err := os.MkdirTemp("", "appimage-extract-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	for _, pattern := range extractPatterns {
		cmd := exec.CommandContext(ctx, bundle, "--appimage-extract", pattern)
		cmd.Dir = scratch
		cmd.WaitDelay = time.Second
		if out, err := cmd.CombinedOutput(); err != nil {
			logging.Logger.Debug("icon extraction pattern failed",
				"bundle", bundle, "pattern", pattern, "error", err, "output", strings.TrimSpace(string(out)))
		}
		if ctx.Err() != nil {
			return apperr.NotFound("icon extraction timed out", ctx.Err())
		}
	}

	for _, path := range rankImages(filepath.Join(scratch, "squashfs-root")) {
		if err := Normalize(path, dst); err != nil {
			logging.Logger.Debug("skipping extracted image", "path", path, "error", err)
			continue
		}
		logging.Logger.Info("extracted icon", "bundle", bundle, "source", path, "icon", dst)
		return nil
	}
	return apperr.NotFound("no icon inside "+filepath.Base(bundle), nil)
}

// rankImages lists extracted images in order of preference: top-level PNGs,
// themed PNGs from the largest size directory down, SVGs, then .DirIcon.
func rankImages(root string) []string {
	type ranked struct {
		path  string
		class int
		size  int
	}
	var found []ranked

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if resolved, err := filepath.EvalSymlinks(path); err != nil || !strings.HasPrefix(resolved, root) {
				return nil
			}
		}

		rel, _ := filepath.Rel(root, path)
		name := strings.ToLower(d.Name())
		topLevel := !strings.Contains(rel, string(os.PathSeparator))

		switch {
		case strings.HasSuffix(name, ".png") && topLevel:
			found = append(found, ranked{path: path, class: 0})
		case strings.HasSuffix(name, ".png"):
			found = append(found, ranked{path: path, class: 1, size: themeSize(rel)})
		case strings.HasSuffix(name, ".svg"):
			found = append(found, ranked{path: path, class: 2})
		case name == ".diricon":
			found = append(found, ranked{path: path, class: 3})
		}
		return nil
	})

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].class != found[j].class {
			return found[i].class < found[j].class
		}
		if found[i].size != found[j].size {
			return found[i].size > found[j].size
		}
		return found[i].path < found[j].path
	})

	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths
}

func themeSize(rel string) int {
	m := sizeDirPattern.FindStringSubmatch(rel)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
